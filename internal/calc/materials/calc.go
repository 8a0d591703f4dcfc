// Package materials turns a framing plan into a cut list.
package materials

import (
	"math"
	"sort"

	"Deckframe/internal/calc/framing"
	deckerr "Deckframe/internal/errors"
)

// StockLengthsFeet are the board lengths a yard carries.
var StockLengthsFeet = []int{8, 10, 12, 14, 16, 18, 20}

type Line struct {
	Usage      string  `json:"usage"`
	Size       string  `json:"size"`
	StockFeet  int     `json:"stockFeet"`
	Count      int     `json:"count"`
	LinearFeet float64 `json:"linearFeet"`
}

type PostCount struct {
	Size       string  `json:"size"`
	Count      int     `json:"count"`
	HeightFeet float64 `json:"heightFeet"`
}

type FootingCount struct {
	Type     string  `json:"type"`
	Diameter float64 `json:"diameter"`
	Count    int     `json:"count"`
}

type Takeoff struct {
	Lines           []Line         `json:"lines"`
	Posts           []PostCount    `json:"posts"`
	Footings        []FootingCount `json:"footings"`
	Boards          int            `json:"boards"`
	TotalLinearFeet float64        `json:"totalLinearFeet"`
}

type piece struct {
	usage, size string
	feet        float64
}

// Calculate builds the takeoff for a finished plan. Members longer than
// the longest stock board are spliced from full boards plus one for the
// remainder. Blocking is nested onto the shortest stock board, longest
// cuts first.
func Calculate(c *framing.Components) (Takeoff, error) {
	if c == nil {
		return Takeoff{}, deckerr.New(deckerr.ErrCodeInvalidInput, "no plan")
	}
	if c.Failed() {
		return Takeoff{}, deckerr.New(deckerr.ErrCodeInvalidInput, "plan has an error: %s", *c.Error)
	}

	var long, short []piece
	add := func(usage, size string, feet float64, count int) {
		if feet <= 0 || size == "" {
			return
		}
		for i := 0; i < count; i++ {
			long = append(long, piece{usage, size, feet})
		}
	}
	if c.Ledger != nil {
		add(c.Ledger.Usage, c.Ledger.Size, c.Ledger.LengthFeet, 1)
	}
	for _, m := range c.DiagonalLedgers {
		add(m.Usage, m.Size, m.LengthFeet, 1)
	}
	for _, b := range c.Beams {
		add(b.Usage, b.Size, b.LengthFeet, b.Ply)
	}
	for _, j := range c.Joists {
		add(j.Usage, j.Size, j.LengthFeet, 1)
	}
	for _, j := range c.RimJoists {
		add(j.Usage, j.Size, j.LengthFeet, 1)
	}
	for _, blocks := range [][]framing.Member{c.MidSpanBlocking, c.PictureFrameBlocking} {
		for _, m := range blocks {
			if m.LengthFeet > 0 {
				short = append(short, piece{m.Usage, m.Size, m.LengthFeet})
			}
		}
	}

	t := Takeoff{Lines: []Line{}, Posts: []PostCount{}, Footings: []FootingCount{}}
	lines := map[Line]*Line{}
	put := func(usage, size string, stock int, feet float64) {
		key := Line{Usage: usage, Size: size, StockFeet: stock}
		l, ok := lines[key]
		if !ok {
			l = &Line{Usage: usage, Size: size, StockFeet: stock}
			lines[key] = l
		}
		l.Count++
		l.LinearFeet += feet
		t.TotalLinearFeet += feet
	}
	for _, p := range long {
		for _, stock := range boardsFor(p.feet) {
			put(p.usage, p.size, stock, float64(stock))
		}
	}
	for _, board := range nest(short) {
		put(board.usage, board.size, StockLengthsFeet[0], float64(StockLengthsFeet[0]))
	}
	for _, l := range lines {
		t.Lines = append(t.Lines, *l)
		t.Boards += l.Count
	}
	sort.Slice(t.Lines, func(i, j int) bool {
		a, b := t.Lines[i], t.Lines[j]
		if a.Usage != b.Usage {
			return a.Usage < b.Usage
		}
		if a.Size != b.Size {
			return a.Size < b.Size
		}
		return a.StockFeet < b.StockFeet
	})

	posts := map[string]int{}
	tallest := map[string]float64{}
	for _, p := range c.Posts {
		posts[p.Size]++
		tallest[p.Size] = math.Max(tallest[p.Size], p.HeightFeet)
	}
	for size, n := range posts {
		t.Posts = append(t.Posts, PostCount{Size: size, Count: n, HeightFeet: tallest[size]})
	}
	sort.Slice(t.Posts, func(i, j int) bool { return t.Posts[i].Size < t.Posts[j].Size })

	footings := map[FootingCount]int{}
	for _, f := range c.Footings {
		footings[FootingCount{Type: f.Type, Diameter: f.Diameter}]++
	}
	for k, n := range footings {
		k.Count = n
		t.Footings = append(t.Footings, k)
	}
	sort.Slice(t.Footings, func(i, j int) bool {
		if t.Footings[i].Type != t.Footings[j].Type {
			return t.Footings[i].Type < t.Footings[j].Type
		}
		return t.Footings[i].Diameter < t.Footings[j].Diameter
	})
	return t, nil
}

// boardsFor returns the stock boards one member is cut from.
func boardsFor(feet float64) []int {
	longest := StockLengthsFeet[len(StockLengthsFeet)-1]
	var out []int
	for feet > float64(longest)+1e-6 {
		out = append(out, longest)
		feet -= float64(longest)
	}
	return append(out, StockLength(feet))
}

// StockLength is the shortest stock board at least feet long, or the
// longest board when none is.
func StockLength(feet float64) int {
	for _, s := range StockLengthsFeet {
		if float64(s)+1e-6 >= feet {
			return s
		}
	}
	return StockLengthsFeet[len(StockLengthsFeet)-1]
}

type bin struct {
	usage, size string
	free        float64
}

// nest packs short cuts of the same usage and size onto the shortest
// stock board by first-fit decreasing.
func nest(pieces []piece) []bin {
	sort.SliceStable(pieces, func(i, j int) bool { return pieces[i].feet > pieces[j].feet })
	stock := float64(StockLengthsFeet[0])
	var bins []bin
	for _, p := range pieces {
		placed := false
		for i := range bins {
			if bins[i].usage == p.usage && bins[i].size == p.size && bins[i].free+1e-6 >= p.feet {
				bins[i].free -= p.feet
				placed = true
				break
			}
		}
		if !placed {
			bins = append(bins, bin{usage: p.usage, size: p.size, free: math.Max(0, stock-p.feet)})
		}
	}
	return bins
}
