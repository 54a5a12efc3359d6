package timing

import "time"

// EstimateTotalTime predicts how long typing totalChars characters takes at
// the given error rate. It is deterministic and leaves the session state
// untouched, so it can be called before playback starts.
func (m *Model) EstimateTotalTime(totalChars int, errorRate float64) time.Duration {
	if totalChars <= 0 {
		return 0
	}
	n := float64(totalChars)
	errorRate = clamp(errorRate, 0, 1)
	base := m.baseSeconds()

	typing := n * base

	// A mistake costs a wrong key, a backspace and two correction pauses.
	meanCorrection := (correctionMin + correctionMax) / 2
	errors := n * errorRate * (2*meanCorrection + 2*base)

	meanThink := (m.params.ThinkPauseMin.Seconds() + m.params.ThinkPauseMax.Seconds()) / 2
	meanThink *= 1 + thinkExtendProb*((thinkExtendMin+thinkExtendMax)/2-1)
	sentences := n / charsPerSentence
	think := sentences / m.params.SentencesPerBurst * meanThink

	meanMicro := (m.params.MicroPauseMin.Seconds() + m.params.MicroPauseMax.Seconds()) / 2
	perChar := meanMicro * (microNoiseShare + microStallProb)
	perWord := postSpaceProb*(postSpaceMin+postSpaceMax)/2 + wordPauseProb*(wordPauseMin+wordPauseMax)/2
	hesitation := n*perChar + n/avgWordWithSpace*perWord

	return seconds(typing + errors + think + hesitation)
}
