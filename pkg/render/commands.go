package render

import "chromatic/pkg/text"

// Command is one drawing instruction of a display list: either a DrawText or
// a DrawRect. Coordinates are in document space.
type Command interface {
	// Bounds returns the vertical extent used for culling.
	Bounds() (top, bottom float64)
	// Execute draws the command on s with the page scrolled by scroll.
	Execute(scroll float64, s Surface)

	command()
}

// Surface is what a display list is drawn on.
type Surface interface {
	DrawText(x, y float64, s string, font text.Font, color string)
	DrawRect(left, top, right, bottom float64, color string)
}

// DrawText draws a word with its top-left corner at (X, Y).
type DrawText struct {
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	Text   string    `json:"text"`
	Font   text.Font `json:"font"`
	Color  string    `json:"color"`
	Top    float64   `json:"top"`
	Bottom float64   `json:"bottom"`
}

// DrawRect fills a rectangle.
type DrawRect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Color  string  `json:"color"`
}

func (c *DrawText) Bounds() (top, bottom float64) { return c.Top, c.Bottom }
func (c *DrawRect) Bounds() (top, bottom float64) { return c.Top, c.Bottom }

func (c *DrawText) Execute(scroll float64, s Surface) {
	s.DrawText(c.X, c.Y-scroll, c.Text, c.Font, c.Color)
}

func (c *DrawRect) Execute(scroll float64, s Surface) {
	s.DrawRect(c.Left, c.Top-scroll, c.Right, c.Bottom-scroll, c.Color)
}

func (c *DrawText) command() {}
func (c *DrawRect) command() {}

// Visible returns the commands that overlap the window [scroll, scroll+height].
func Visible(cmds []Command, scroll, height float64) []Command {
	visible := make([]Command, 0, len(cmds))
	for _, cmd := range cmds {
		top, bottom := cmd.Bounds()
		if top > scroll+height || bottom < scroll {
			continue
		}
		visible = append(visible, cmd)
	}
	return visible
}

// Execute replays cmds on s in order.
func Execute(cmds []Command, scroll float64, s Surface) {
	for _, cmd := range cmds {
		cmd.Execute(scroll, s)
	}
}
