package editor

import (
	"strconv"
	"strings"
)

// DragController interprets pointer drag gestures over step cards and
// palette tools as an explicit state machine, independent of any UI
// toolkit. Card and slot ids are the rendered step index in decimal; tool
// ids carry the "tool-" prefix.
//
// The three transient fields exist only for the duration of one gesture and
// are cleared unconditionally on End, success or not, so the editor can
// never get stuck in a mid-drag state.
type DragController struct {
	doc     *Document
	palette *Palette

	activeCard string
	activeTool string
	activeSlot string
}

func NewDragController(doc *Document, palette *Palette) *DragController {
	return &DragController{doc: doc, palette: palette}
}

func (c *DragController) ActiveCard() string { return c.activeCard }
func (c *DragController) ActiveTool() string { return c.activeTool }
func (c *DragController) ActiveSlot() string { return c.activeSlot }

// Dragging reports whether a gesture is in progress.
func (c *DragController) Dragging() bool {
	return c.activeCard != "" || c.activeTool != ""
}

// Start begins a gesture. The id prefix decides whether an existing card or
// a palette tool is being dragged.
func (c *DragController) Start(id string) {
	if strings.HasPrefix(id, ToolIDPrefix) {
		c.activeTool = id
		c.activeCard = ""
	} else {
		c.activeCard = id
		c.activeTool = ""
	}

	c.activeSlot = ""
}

// Over tracks the current candidate drop slot.
func (c *DragController) Over(slotID string) {
	c.activeSlot = slotID
}

// Leave clears the candidate slot when the pointer exits all drop targets.
func (c *DragController) Leave() {
	c.activeSlot = ""
}

// End commits the gesture and returns whether the document changed.
//
// Card over a different slot: splice-based reorder, source removed and
// re-inserted at the target index. Tool over a slot: a fresh step inserted
// immediately after the slot — a drop on the implicit request slot (index 0)
// inserts at index 1, so the request step is never displaced. No slot, or
// source equal to target: no mutation.
func (c *DragController) End() (bool, error) {
	defer c.reset()

	if c.activeSlot == "" {
		return false, nil
	}

	if c.activeTool != "" {
		return c.commitTool()
	}

	if c.activeCard != "" {
		return c.commitCard()
	}

	return false, nil
}

func (c *DragController) commitTool() (bool, error) {
	slot, err := strconv.Atoi(c.activeSlot)
	if err != nil {
		return false, nil
	}

	step, err := c.palette.Instantiate(c.activeTool)
	if err != nil {
		return false, err
	}

	target := slot + 1
	if target < 1 {
		target = 1
	}

	if err := c.doc.InsertAt(target, step); err != nil {
		return false, err
	}

	return true, nil
}

func (c *DragController) commitCard() (bool, error) {
	if c.activeCard == c.activeSlot {
		return false, nil
	}

	from, err := strconv.Atoi(c.activeCard)
	if err != nil {
		return false, nil
	}

	to, err := strconv.Atoi(c.activeSlot)
	if err != nil {
		return false, nil
	}

	if err := c.doc.Move(from, to); err != nil {
		return false, err
	}

	return true, nil
}

func (c *DragController) reset() {
	c.activeCard = ""
	c.activeTool = ""
	c.activeSlot = ""
}
