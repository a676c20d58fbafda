package itm

// observer: optional snapshots of the multiplier state, produced once per
// sweep by worker 0 only.

import (
	"bufio"
	"fmt"
	"os"

	"github.com/pkg/errors"
)

// observer receives one callback per sweep.
type observer[F Float] interface {
	observe()
	close() error
}

type noneObserver[F Float] struct{}

func (noneObserver[F]) observe()     {}
func (noneObserver[F]) close() error { return nil }

// pnmObserver writes <base>-pi.pnm, a colormapped row per sweep of the
// dual vector, and one <base>-P-<frame>.pnm per sweep with the preference
// matrix projected onto the (row, col) grid.
type pnmObserver[F Float] struct {
	core  *solverCore[F]
	base  string
	pi    *pnmImage
	frame int
}

func newPnmObserver[F Float](core *solverCore[F], base string) *pnmObserver[F] {
	return &pnmObserver[F]{
		core: core,
		base: base,
		pi:   &pnmImage{width: core.m},
	}
}

func (o *pnmObserver[F]) observe() {
	row := o.pi.appendRow()
	for k := 0; k < o.core.m; k++ {
		colormap(float64(o.core.pi[k]), -5, 5, row[k*3:])
	}

	img := newPnmImage(o.core.n, o.core.m)
	for k := 0; k < o.core.m; k++ {
		for _, e := range o.core.ap.Row(k) {
			colormap(float64(o.core.P[e.Value]), -10, 10, img.at(k, e.Column))
		}
	}
	if err := img.write(fmt.Sprintf("%s-P-%d.pnm", o.base, o.frame)); err != nil {
		log.WithError(err).Warn("observer: P snapshot failed")
	}
	o.frame++
}

func (o *pnmObserver[F]) close() error {
	if o.pi.height == 0 {
		return nil
	}
	return o.pi.write(fmt.Sprintf("%s-pi.pnm", o.base))
}

// fileObserver appends the dual vector as one text line per sweep.
type fileObserver[F Float] struct {
	core *solverCore[F]
	f    *os.File
	w    *bufio.Writer
}

func newFileObserver[F Float](core *solverCore[F], base string) (*fileObserver[F], error) {
	f, err := os.Create(fmt.Sprintf("%s-pi.txt", base))
	if err != nil {
		return nil, errors.Wrap(err, "creating observer file")
	}
	return &fileObserver[F]{
		core: core,
		f:    f,
		w:    bufio.NewWriter(f),
	}, nil
}

func (o *fileObserver[F]) observe() {
	for k := 0; k < o.core.m; k++ {
		if k > 0 {
			o.w.WriteByte(' ')
		}
		fmt.Fprintf(o.w, "%g", float64(o.core.pi[k]))
	}
	o.w.WriteByte('\n')
}

func (o *fileObserver[F]) close() error {
	if err := o.w.Flush(); err != nil {
		o.f.Close()
		return errors.Wrap(err, "flushing observer file")
	}
	return errors.Wrap(o.f.Close(), "closing observer file")
}
