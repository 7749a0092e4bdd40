package gridworld

import (
	"fmt"
	"image/color"
	"io"
	"strings"

	"github.com/fogleman/gg"
	"github.com/logrusorgru/aurora"
	"gonum.org/v1/gonum/mat"
)

// CellPixels is the side length in pixels of a cell in rendered policy
// images
const CellPixels = 48

var (
	backgroundColour = color.RGBA{245, 245, 240, 255}
	wallColour       = color.RGBA{60, 60, 70, 255}
	goalColour       = color.RGBA{90, 180, 100, 255}
	gridColour       = color.RGBA{200, 200, 200, 255}
	arrowColour      = color.RGBA{40, 90, 200, 255}
)

// GreedyPolicy is a policy that can be queried for its greedy action
// without changing its state
type GreedyPolicy interface {
	Greedy(obs mat.Vector, valid []bool) (int, error)
}

// Print writes the current state of the GridWorld to w, with the top
// row first. If colour is set, cells are coloured with ANSI escape
// codes.
func (g *GridWorld) Print(w io.Writer, colour bool) error {
	au := aurora.NewAurora(colour)

	var b strings.Builder
	for y := g.r - 1; y >= 0; y-- {
		for x := 0; x < g.c; x++ {
			var cell aurora.Value
			switch g.At(y, x) {
			case Agent:
				cell = au.Bold(au.Blue("@"))
			case Wall:
				cell = au.Red(string(WallChar))
			case Visited:
				cell = au.Yellow("*")
			case GoalCell:
				cell = au.Green(string(GoalChar))
			default:
				cell = au.White(string(EmptyChar))
			}
			fmt.Fprint(&b, cell)
		}
		b.WriteByte('\n')
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderPolicy draws the greedy action of p in every open cell of the
// GridWorld as an arrow and writes the image to w in PNG format. Each
// cell is queried with the agent placed in it and no cell visited.
func (g *GridWorld) RenderPolicy(p GreedyPolicy, w io.Writer) error {
	dc, err := g.drawPolicy(p)
	if err != nil {
		return fmt.Errorf("renderPolicy: %v", err)
	}
	return dc.EncodePNG(w)
}

// SavePolicy draws the greedy action of p in every open cell of the
// GridWorld and saves the image as a PNG file at path
func (g *GridWorld) SavePolicy(p GreedyPolicy, path string) error {
	dc, err := g.drawPolicy(p)
	if err != nil {
		return fmt.Errorf("savePolicy: %v", err)
	}
	return dc.SavePNG(path)
}

func (g *GridWorld) drawPolicy(p GreedyPolicy) (*gg.Context, error) {
	dc := gg.NewContext(g.c*CellPixels, g.r*CellPixels)
	dc.SetColor(backgroundColour)
	dc.Clear()

	for ind := 0; ind < g.r*g.c; ind++ {
		// Pixel coordinates of the top-left corner of the cell
		x, y := indToC(ind, g.c)
		px := float64(x * CellPixels)
		py := float64((g.r - 1 - y) * CellPixels)

		switch {
		case g.walls[ind]:
			dc.DrawRectangle(px, py, CellPixels, CellPixels)
			dc.SetColor(wallColour)
			dc.Fill()
			continue

		case g.isGoal(ind):
			dc.DrawRectangle(px, py, CellPixels, CellPixels)
			dc.SetColor(goalColour)
			dc.Fill()
			continue
		}

		valid := g.validActionsAt(ind, nil)
		if !anyValid(valid) {
			continue
		}
		action, err := p.Greedy(g.observationAt(ind, nil), valid)
		if err != nil {
			return nil, fmt.Errorf("cell %d: %v", ind, err)
		}
		drawArrow(dc, px+CellPixels/2, py+CellPixels/2, action)
	}

	// Grid lines
	dc.SetColor(gridColour)
	dc.SetLineWidth(1.0)
	for x := 0; x <= g.c; x++ {
		dc.DrawLine(float64(x*CellPixels), 0, float64(x*CellPixels),
			float64(g.r*CellPixels))
	}
	for y := 0; y <= g.r; y++ {
		dc.DrawLine(0, float64(y*CellPixels), float64(g.c*CellPixels),
			float64(y*CellPixels))
	}
	dc.Stroke()

	return dc, nil
}

// drawArrow draws an arrow centred at (cx, cy) pointing in the
// direction of action. Pixel y coordinates grow downwards.
func drawArrow(dc *gg.Context, cx, cy float64, action int) {
	const length = CellPixels * 0.35
	const head = CellPixels * 0.15

	var dx, dy float64
	switch action {
	case Left:
		dx = -1
	case Right:
		dx = 1
	case Up:
		dy = -1
	case Down:
		dy = 1
	}

	tipX, tipY := cx+dx*length, cy+dy*length
	dc.SetColor(arrowColour)
	dc.SetLineWidth(3.0)
	dc.DrawLine(cx-dx*length, cy-dy*length, tipX, tipY)
	dc.Stroke()

	// Arrow head
	dc.MoveTo(tipX+dx*head*0.5, tipY+dy*head*0.5)
	dc.LineTo(tipX-dx*head+dy*head, tipY-dy*head+dx*head)
	dc.LineTo(tipX-dx*head-dy*head, tipY-dy*head-dx*head)
	dc.ClosePath()
	dc.Fill()
}

func anyValid(valid []bool) bool {
	for _, v := range valid {
		if v {
			return true
		}
	}
	return false
}
