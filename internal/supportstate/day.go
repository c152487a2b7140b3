package supportstate

import "time"

// ist is the exchange clock (no DST)
var ist = time.FixedZone("IST", 5*60*60+30*60)

// TradingDay is the exchange calendar date of t.
// ⭐ SSOT: COA1 support state는 거래일 단위로만 유효 (다음 날이면 새로 계산)
func TradingDay(t time.Time) string {
	return t.In(ist).Format("2006-01-02")
}
