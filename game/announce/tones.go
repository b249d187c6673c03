package announce

// Waveform names follow the Web Audio oscillator types.
const (
	WaveSine     = "sine"
	WaveSawtooth = "sawtooth"
)

// Note is a single oscillator tone.
type Note struct {
	Frequency  float64 `json:"frequency"`
	DurationMS int     `json:"duration_ms"`
	Waveform   string  `json:"waveform"`
}

// Tone is a named sequence of notes played back to back.
type Tone struct {
	Name  string `json:"name"`
	Notes []Note `json:"notes"`
}

var (
	ToneMove    = Tone{Name: "move", Notes: []Note{{800, 80, WaveSine}}}
	TonePush    = Tone{Name: "push", Notes: []Note{{400, 120, WaveSine}}}
	ToneSuccess = Tone{Name: "success", Notes: []Note{{1000, 200, WaveSine}}}
	ToneBlocked = Tone{Name: "blocked", Notes: []Note{{200, 150, WaveSawtooth}}}
	ToneStart   = Tone{Name: "start", Notes: []Note{{659, 250, WaveSine}}}
	ToneWin     = Tone{Name: "win", Notes: []Note{
		{523, 150, WaveSine},
		{587, 150, WaveSine},
		{659, 150, WaveSine},
		{784, 150, WaveSine},
		{880, 150, WaveSine},
	}}
)

// DurationMS returns the total playback length of the tone.
func (t Tone) DurationMS() int {
	total := 0
	for _, n := range t.Notes {
		total += n.DurationMS
	}
	return total
}
