package models

// Block categories used by the knowledge base and the fallback parser.
const (
	CategoryAmp     = "Amp"
	CategoryPreamp  = "Preamp"
	CategoryCab     = "Cab"
	CategoryDrive   = "Drive"
	CategoryDelay   = "Delay"
	CategoryReverb  = "Reverb"
	CategoryMod     = "Mod"
	CategoryComp    = "Comp"
	CategoryEQ      = "EQ"
	CategoryFilter  = "Filter"
	CategoryGate    = "Gate"
	CategoryWah     = "Wah"
	CategoryPitch   = "Pitch"
	CategorySynth   = "Synth"
	CategoryUtility = "Utility"
	CategoryLooper  = "Looper"
	CategoryFXLoop  = "FX Loop"
	CategoryRouting = "Routing"
	CategoryUnknown = "Unknown"
)

// Record describes what a model identifier stands for.
type Record struct {
	Category string `json:"category" yaml:"category"`
	Alias    string `json:"alias" yaml:"alias"`
	Hardware string `json:"hardware" yaml:"hardware"`
}

// Authority tells whether a resolution came from the curated table.
type Authority string

const (
	Exact    Authority = "exact"
	Fallback Authority = "fallback"
)

// Resolution is the result of resolving one identifier.
type Resolution struct {
	ID string `json:"id"`
	Record
	Authority Authority `json:"authority"`
}

// Authoritative reports whether the hardware name is curated rather than
// guessed.
func (r Resolution) Authoritative() bool {
	return r.Authority == Exact
}

// IsRouting reports whether the record describes internal signal routing
// (inputs, outputs, splits, joins) rather than an audible stage.
func (r Record) IsRouting() bool {
	return r.Category == CategoryRouting
}
