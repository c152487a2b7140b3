package s1_signals

// PCR is the put-call ratio put/call; 0 when call is 0
func PCR(call, put float64) float64 {
	if call == 0 {
		return 0
	}
	return put / call
}
