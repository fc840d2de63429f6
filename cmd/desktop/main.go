package main

import (
	"fmt"
	"image/color"
	"log"
	"os"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"minicpp/pkg/compiler"
	"minicpp/pkg/grid"
	"minicpp/pkg/interp"
	"minicpp/pkg/utils"
)

const (
	screenWidth  = 1024
	screenHeight = 640
	charWidth    = 7
	lineHeight   = 16
	gutterCols   = 5
	paneSplit    = screenWidth / 2
	statusHeight = 2 * lineHeight
	outputCols   = (screenWidth - paneSplit - 2*charWidth) / charWidth
	visibleRows  = (screenHeight - statusHeight) / lineHeight

	// maxSteps keeps a runaway loop from freezing the window.
	maxSteps = 2_000_000
)

var (
	colBackground = color.RGBA{0x1e, 0x1e, 0x1e, 0xff}
	colGutter     = color.RGBA{0x80, 0x80, 0x80, 0xff}
	colText       = color.RGBA{0xdc, 0xdc, 0xdc, 0xff}
	colErrorLine  = color.RGBA{0x8b, 0x1a, 0x1a, 0xff}
	colStatusBar  = color.RGBA{0x2d, 0x2d, 0x30, 0xff}
	colStatusErr  = color.RGBA{0xff, 0x6b, 0x6b, 0xff}
	colDivider    = color.RGBA{0x3c, 0x3c, 0x3c, 0xff}
)

// session is the state of one loaded file and its last run.
type session struct {
	path    string
	source  []string
	output  []string
	errLine int // 0 when the last run succeeded
	status  string
}

// reload reads the file again and runs it from scratch.
func (s *session) reload() {
	s.source, s.output, s.errLine = nil, nil, 0

	src, _, err := utils.ReadSource(s.path)
	if err != nil {
		s.status = err.Error()
		return
	}
	s.source = strings.Split(strings.ReplaceAll(src, "\t", "    "), "\n")

	var out strings.Builder
	_, err = interp.Run(src, &interp.Options{
		Output:   func(str string) { out.WriteString(str) },
		MaxSteps: maxSteps,
	})
	s.output = grid.Wrap(out.String(), outputCols)
	if err != nil {
		if line, ok := compiler.ErrorLine(err); ok {
			s.errLine = line
		}
		s.status = err.Error()
		return
	}
	s.status = fmt.Sprintf("%s: ok (F5 / Ctrl+R to re-run)", s.path)
}

type Game struct {
	sess   *session
	face   text.Face
	scroll int
}

func (g *Game) maxScroll() int {
	n := max(len(g.sess.source), len(g.sess.output))
	return max(0, n-visibleRows)
}

func (g *Game) Update() error {
	ctrl := ebiten.IsKeyPressed(ebiten.KeyControl)
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) || (ctrl && inpututil.IsKeyJustPressed(ebiten.KeyR)) {
		g.sess.reload()
		if g.sess.errLine > 0 {
			// Bring the failing line into view.
			g.scroll = g.sess.errLine - visibleRows/2
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) || inpututil.KeyPressDuration(ebiten.KeyArrowDown) > 20 {
		g.scroll++
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) || inpututil.KeyPressDuration(ebiten.KeyArrowUp) > 20 {
		g.scroll--
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyPageDown) {
		g.scroll += visibleRows
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyPageUp) {
		g.scroll -= visibleRows
	}
	if _, dy := ebiten.Wheel(); dy != 0 {
		g.scroll -= int(dy * 3)
	}
	g.scroll = min(max(g.scroll, 0), g.maxScroll())
	return nil
}

func (g *Game) drawText(screen *ebiten.Image, s string, x, y int, clr color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(screen, s, g.face, op)
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colBackground)
	vector.DrawFilledRect(screen, paneSplit-1, 0, 2, screenHeight-statusHeight, colDivider, false)

	for row := 0; row < visibleRows; row++ {
		i := g.scroll + row
		y := row * lineHeight

		if i < len(g.sess.source) {
			lineNo := i + 1
			if lineNo == g.sess.errLine {
				vector.DrawFilledRect(screen, 0, float32(y), paneSplit-1, lineHeight, colErrorLine, false)
			}
			g.drawText(screen, fmt.Sprintf("%*d", gutterCols-1, lineNo), 0, y+2, colGutter)
			g.drawText(screen, g.sess.source[i], gutterCols*charWidth, y+2, colText)
		}
		if i < len(g.sess.output) {
			g.drawText(screen, g.sess.output[i], paneSplit+charWidth, y+2, colText)
		}
	}

	statusY := screenHeight - statusHeight
	vector.DrawFilledRect(screen, 0, float32(statusY), screenWidth, statusHeight, colStatusBar, false)
	clr := color.Color(colText)
	if g.sess.errLine > 0 || len(g.sess.source) == 0 {
		clr = colStatusErr
	}
	status := g.sess.status
	if cols := screenWidth/charWidth - 2; len([]rune(status)) > cols {
		status = string([]rune(status)[:cols])
	}
	g.drawText(screen, status, charWidth, statusY+lineHeight/2, clr)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: desktop <file.cpp>")
		os.Exit(2)
	}

	sess := &session{path: os.Args[1]}
	sess.reload()

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("minicpp - " + sess.path)

	game := &Game{sess: sess, face: text.NewGoXFace(basicfont.Face7x13)}
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
