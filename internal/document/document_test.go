package document

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pageflow/internal/model"
)

func TestSynthetic_LoadPassword(t *testing.T) {
	doc := NewSynthetic("doc", UniformPages(2, 100, 200), WithPassword("secret"))
	ctx := context.Background()

	_, err := doc.Load(ctx, model.File{Name: "a.pdf"}, "")
	assert.ErrorIs(t, err, ErrPasswordRequired)
	assert.True(t, IsPasswordError(err))

	_, err = doc.Load(ctx, model.File{Name: "a.pdf"}, "nope")
	assert.ErrorIs(t, err, ErrWrongPassword)

	got, err := doc.Load(ctx, model.File{Name: "a.pdf"}, "secret")
	require.NoError(t, err)
	assert.Equal(t, 2, got.NumPages())
}

func TestSynthetic_LoadError(t *testing.T) {
	boom := errors.New("malformed")
	doc := NewSynthetic("doc", nil, WithLoadError(boom))

	_, err := doc.Load(context.Background(), model.File{Name: "x"}, "")
	assert.ErrorIs(t, err, boom)
	assert.False(t, IsPasswordError(err))
}

func TestSynthetic_PageBounds(t *testing.T) {
	doc := NewSynthetic("doc", UniformPages(2, 100, 200))

	_, err := doc.Page(context.Background(), 2)
	assert.ErrorIs(t, err, ErrNoSuchPage)
	_, err = doc.Text(context.Background(), -1)
	assert.ErrorIs(t, err, ErrNoSuchPage)
}

func TestSynthetic_RenderFillsSurface(t *testing.T) {
	doc := NewSynthetic("doc", UniformPages(3, 10, 20))
	p, err := doc.Page(context.Background(), 2)
	require.NoError(t, err)

	size := p.Viewport(90, 2)
	assert.Equal(t, model.Size{Width: 40, Height: 20}, size)

	surface := image.NewRGBA(image.Rect(0, 0, int(size.Width), int(size.Height)))
	require.NoError(t, p.Render(context.Background(), surface, 90, 2))

	r, g, b, _ := surface.At(5, 5).RGBA()
	want := Fill(2)
	assert.Equal(t, uint32(want.Y)*0x101, r)
	assert.Equal(t, r, g)
	assert.Equal(t, r, b)
	assert.Equal(t, []int{2}, doc.Renders())
}

func TestSynthetic_InjectedFailures(t *testing.T) {
	doc := NewSynthetic("doc", UniformPages(1, 10, 10), WithRenderFailures(0, 2))
	p, err := doc.Page(context.Background(), 0)
	require.NoError(t, err)
	surface := image.NewRGBA(image.Rect(0, 0, 10, 10))

	assert.ErrorIs(t, p.Render(context.Background(), surface, 0, 1), ErrInjectedFailure)
	assert.ErrorIs(t, p.Render(context.Background(), surface, 0, 1), ErrInjectedFailure)
	assert.NoError(t, p.Render(context.Background(), surface, 0, 1))
	assert.Equal(t, []int{0}, doc.Renders())
}

func TestSynthetic_RenderHonoursContext(t *testing.T) {
	doc := NewSynthetic("doc", UniformPages(1, 10, 10), WithLatency(time.Hour))
	p, err := doc.Page(context.Background(), 0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = p.Render(ctx, image.NewRGBA(image.Rect(0, 0, 1, 1)), 0, 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, doc.Renders())
}

func TestSynthetic_Annotations(t *testing.T) {
	pages := UniformPages(1, 10, 10)
	pages[0].Annotations = []Annotation{{Kind: "Link", Rect: [4]float64{0, 0, 5, 5}}}
	doc := NewSynthetic("doc", pages)

	got, err := doc.Annotations(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, pages[0].Annotations, got)

	got[0].Kind = "changed"
	again, _ := doc.Annotations(context.Background(), 0)
	assert.Equal(t, "Link", again[0].Kind)
}

func TestMeasurePages(t *testing.T) {
	pages := UniformPages(20, 100, 200)
	pages[7].Width = 300
	doc := NewSynthetic("doc", pages)

	got, err := MeasurePages(context.Background(), doc, 3)
	require.NoError(t, err)

	require.Len(t, got, 20)
	for i, d := range got {
		assert.Equal(t, i, d.Index)
	}
	assert.Equal(t, model.Descriptor{Index: 7, Width: 300, Height: 200}, got[7])
}

type brokenDoc struct{ *Synthetic }

func (b brokenDoc) Page(ctx context.Context, i int) (Page, error) {
	if i == 3 {
		return nil, errors.New("corrupt page")
	}
	return b.Synthetic.Page(ctx, i)
}

func TestMeasurePages_Error(t *testing.T) {
	doc := brokenDoc{NewSynthetic("doc", UniformPages(5, 1, 1))}

	_, err := MeasurePages(context.Background(), doc, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page 3")
}

func TestPDFLoader_RejectsGarbage(t *testing.T) {
	_, err := PDFLoader{}.Load(context.Background(), model.File{Name: "x.pdf"}, "")
	require.Error(t, err)

	_, err = PDFLoader{}.Load(context.Background(), model.File{Name: "x.pdf", Data: []byte("not a pdf")}, "")
	require.Error(t, err)
	assert.False(t, IsPasswordError(err))
}

func TestPDFPage_Render(t *testing.T) {
	doc := &pdfDocument{id: "x", pages: []model.Descriptor{{Index: 0, Width: 612, Height: 792}}}
	p, err := doc.Page(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, model.Size{Width: 792, Height: 612}, p.Viewport(270, 1))

	surface := image.NewRGBA(image.Rect(0, 0, 4, 4))
	require.NoError(t, p.Render(context.Background(), surface, 0, 1))
	r, _, _, a := surface.At(1, 1).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0xffff), a)

	_, err = doc.Page(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNoSuchPage)
}
