package contracts

import (
	"errors"
	"fmt"
)

// Pipeline Stage 정의 (SSOT)
// 모든 로그와 에러에서 이 상수를 사용해야 함
//
// 파이프라인 흐름:
//   S0 → S1 → S2 → S3
//   Chain  Signals  COA1  Publish

// Stage represents a derivation stage
type Stage string

const (
	// StageChain S0: ATM 선택 및 스트라이크 윈도우
	// 위치: internal/s0_chain/
	StageChain Stage = "S0_CHAIN"

	// StageSignals S1: 스트라이크/체인 시그널, VIX 밴드
	// 위치: internal/s1_signals/
	StageSignals Stage = "S1_SIGNALS"

	// StageCOA1 S2: 지지/저항 및 COA1 시그널
	// 위치: internal/s2_coa1/
	StageCOA1 Stage = "S2_COA1"

	// StagePublish S3: 저장, 캐시, 브로드캐스트
	// 위치: internal/pipeline/
	StagePublish Stage = "S3_PUBLISH"
)

func (s Stage) String() string {
	return string(s)
}

// ShortName returns abbreviated stage name (e.g., "S0", "S1")
func (s Stage) ShortName() string {
	switch s {
	case StageChain:
		return "S0"
	case StageSignals:
		return "S1"
	case StageCOA1:
		return "S2"
	case StagePublish:
		return "S3"
	default:
		return "UNKNOWN"
	}
}

// Description returns Korean description of the stage
func (s Stage) Description() string {
	switch s {
	case StageChain:
		return "ATM/윈도우 선택"
	case StageSignals:
		return "시그널 계산"
	case StageCOA1:
		return "COA1 지지/저항"
	case StagePublish:
		return "저장/배포"
	default:
		return "알 수 없음"
	}
}

// AllStages returns all stages in order
func AllStages() []Stage {
	return []Stage{StageChain, StageSignals, StageCOA1, StagePublish}
}

// IsValidStage checks if a stage string is valid
func IsValidStage(s string) bool {
	for _, stage := range AllStages() {
		if string(stage) == s {
			return true
		}
	}
	return false
}

// StageError tags a failure with the stage that produced it
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage.ShortName(), e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// StageOf returns the first stage tag found in err's chain
func StageOf(err error) (Stage, bool) {
	var se *StageError
	if !errors.As(err, &se) {
		return "", false
	}
	return se.Stage, true
}

// AtStage wraps err with stage; nil stays nil
func AtStage(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}
