package hxgrid

// SwapMode is the hx-swap strategy a grid uses when it replaces itself.
//
// See https://htmx.org/attributes/hx-swap/.
type SwapMode string

const (
	// SwapOuter replaces the grid element itself. This is the default.
	SwapOuter SwapMode = "outerHTML"

	// SwapInner replaces only the contents of the target, keeping the
	// target element. Pair it with WithTarget on a wrapper element.
	SwapInner SwapMode = "innerHTML"

	// SwapMorph uses the idiomorph extension to patch the grid in place,
	// which keeps focus in the filter input across refreshes.
	SwapMorph SwapMode = "morph:outerHTML"
)
