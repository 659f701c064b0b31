package heap

import (
	"github.com/oxischeme/oxischeme/internal/errors"
)

// frameAt walks frames hops up the parent chain from act.
func (h *Heap) frameAt(act ActivationHandle, hops int) *ActivationFrame {
	frame := act.Get()

	for i := 0; i < hops; i++ {
		if frame.Parent == nil {
			return nil
		}

		frame = frame.Parent.Get()
	}

	return frame
}

// Fetch reads the value at (frame, slot) coordinates relative to act,
// as resolved statically by the analyzer against the lexical
// environment. A missing frame or a negative slot is a SlotOutOfBounds
// error. A slot past the end of the frame, or one still holding
// Unbound, is an unbound-binding error: the analyzer reserves slots
// against lexical scope, and a frame only grows to reach a reserved
// slot once a define for it has executed.
func (h *Heap) Fetch(act ActivationHandle, frameHops, slot int) (Value, error) {
	frame := h.frameAt(act, frameHops)
	if frame == nil || slot < 0 {
		length := 0
		if frame != nil {
			length = len(frame.Slots)
		}

		return nil, errors.SlotOutOfBounds(frameHops, slot, length)
	}

	if slot >= len(frame.Slots) || frame.Slots[slot] == Unbound {
		return nil, errors.UnboundReference("")
	}

	return frame.Slots[slot], nil
}

// Update assigns the value at (frame, slot) coordinates relative to
// act, for set!. Assigning into a slot that is still Unbound, or that
// lies past the end of the frame, is an unbound-binding error — the
// "cannot set variable before it has been defined" counterpart of the
// case Fetch raises for reference, since a set! on a name the
// analyzer had to forward-declare (see SetVariable) still fails at
// runtime if no definition ever ran.
func (h *Heap) Update(act ActivationHandle, frameHops, slot int, v Value) error {
	frame := h.frameAt(act, frameHops)
	if frame == nil || slot < 0 {
		length := 0
		if frame != nil {
			length = len(frame.Slots)
		}

		return errors.SlotOutOfBounds(frameHops, slot, length)
	}

	if slot >= len(frame.Slots) || frame.Slots[slot] == Unbound {
		return errors.UnboundSet("")
	}

	frame.Slots[slot] = v

	return nil
}

// BindParam writes v directly into a freshly allocated activation's
// slot without checking whether it was previously bound. Used only to
// populate a new call frame's argument slots, which start Unbound by
// construction and are never read before being written — unlike
// Update, this is not set!, so the usual unbound-target check would
// reject every single call.
func (h *Heap) BindParam(act ActivationHandle, slot int, v Value) error {
	frame := h.frameAt(act, 0)
	if slot < 0 || slot >= len(frame.Slots) {
		return errors.SlotOutOfBounds(0, slot, len(frame.Slots))
	}

	frame.Slots[slot] = v

	return nil
}

// Define assigns v into a slot in act's own frame (frameHops == 0),
// growing the frame if slot is beyond its current length. Used for
// every define, top-level or nested, where the static environment
// appends a new slot to the innermost frame on every fresh name.
func (h *Heap) Define(act ActivationHandle, slot int, v Value) {
	frame := act.Get()

	for slot >= len(frame.Slots) {
		frame.Slots = append(frame.Slots, Unbound)
	}

	frame.Slots[slot] = v
}
