package live

import "github.com/voxcal/voxcal-core/core/tools"

// Setup is the one-time configuration transmitted when a stream opens. It
// is how the backend learns how to behave and what tools it may invoke.
type Setup struct {
	// SystemInstruction is the natural-language behavior prompt, expected
	// to embed the current wall-clock time so the model can resolve
	// relative dates.
	SystemInstruction string
	// Tools are the declarations of every locally executable tool.
	Tools []tools.Declaration
}
