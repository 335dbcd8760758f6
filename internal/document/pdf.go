package document

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"log/slog"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/image/draw"

	"github.com/roach88/pageflow/internal/model"
)

// PDFLoader loads PDF files with pdfcpu.
type PDFLoader struct {
	// Strict turns off relaxed validation.
	Strict bool
}

// Load reads the page geometry of file. The file bytes are kept by the
// returned document; pdfcpu is not consulted again after Load.
func (l PDFLoader) Load(ctx context.Context, file model.File, password string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(file.Data) == 0 {
		return nil, fmt.Errorf("load %q: empty file", file.Name)
	}

	conf := pdfmodel.NewDefaultConfiguration()
	if !l.Strict {
		conf.ValidationMode = pdfmodel.ValidationRelaxed
	}
	conf.UserPW = password
	conf.OwnerPW = password

	dims, err := api.PageDims(bytes.NewReader(file.Data), conf)
	if err != nil {
		if isPasswordFailure(err) {
			if password == "" {
				return nil, fmt.Errorf("load %q: %w", file.Name, ErrPasswordRequired)
			}
			return nil, fmt.Errorf("load %q: %w", file.Name, ErrWrongPassword)
		}
		return nil, fmt.Errorf("load %q: %w", file.Name, err)
	}

	sum := sha256.Sum256(file.Data)
	doc := &pdfDocument{
		id:    hex.EncodeToString(sum[:]),
		pages: make([]model.Descriptor, len(dims)),
	}
	for i, d := range dims {
		doc.pages[i] = model.Descriptor{Index: i, Width: d.Width, Height: d.Height}
	}

	slog.Info("pdf loaded",
		"file", file.Name,
		"doc_id", doc.id,
		"pages", len(dims),
		"encrypted", password != "",
	)
	return doc, nil
}

// pdfcpu reports decryption failures as plain errors mentioning the
// password.
func isPasswordFailure(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "password")
}

type pdfDocument struct {
	id    string
	pages []model.Descriptor
}

func (d *pdfDocument) ID() string {
	return d.id
}

func (d *pdfDocument) NumPages() int {
	return len(d.pages)
}

func (d *pdfDocument) Page(ctx context.Context, i int) (Page, error) {
	if i < 0 || i >= len(d.pages) {
		return nil, fmt.Errorf("page %d of %d: %w", i, len(d.pages), ErrNoSuchPage)
	}
	return pdfPage{desc: d.pages[i]}, nil
}

type pdfPage struct {
	desc model.Descriptor
}

func (p pdfPage) Index() int {
	return p.desc.Index
}

func (p pdfPage) Viewport(rotation int, scale float64) model.Size {
	return p.desc.Size(rotation, scale)
}

// Render paints the page background.
func (p pdfPage) Render(ctx context.Context, surface draw.Image, rotation int, scale float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	draw.Draw(surface, surface.Bounds(), image.White, image.Point{}, draw.Src)
	return nil
}
