package controller

import (
	"sync"

	"github.com/dukerupert/dietdesk/internal/collection"
)

// Editor is the controller surface a Page drives.
type Editor[T collection.Record, F any] interface {
	Get(id int64) (T, bool)
	BlankForm() F
	FormFor(rec T) F
	Create(f F) (T, error)
	Update(id int64, f F) (T, bool, error)
}

// Page is the form scratchpad of one editing session. It is either creating
// a new record or editing an existing one; Submit dispatches accordingly.
type Page[T collection.Record, F any] struct {
	mu      sync.Mutex
	editor  Editor[T, F]
	form    F
	editing int64
}

func NewPage[T collection.Record, F any](editor Editor[T, F]) *Page[T, F] {
	return &Page[T, F]{editor: editor, form: editor.BlankForm()}
}

// Form returns a copy of the current form.
func (p *Page[T, F]) Form() F {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.form
}

// Fill edits the form in place under the page lock, for example by decoding
// a request body over it. An error from fn is returned unchanged; whatever fn
// already wrote stays in the form.
func (p *Page[T, F]) Fill(fn func(*F) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return fn(&p.form)
}

// Editing returns the id being edited, or false in create mode.
func (p *Page[T, F]) Editing() (int64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.editing, p.editing != 0
}

// EditOpen switches to edit mode for id, loading the record into the form.
// It reports false, leaving the page unchanged, when no such record exists.
func (p *Page[T, F]) EditOpen(id int64) bool {
	rec, ok := p.editor.Get(id)
	if !ok {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.form = p.editor.FormFor(rec)
	p.editing = rec.RecordID()
	return true
}

// Reset discards the form and returns to create mode.
func (p *Page[T, F]) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.form = p.editor.BlankForm()
	p.editing = 0
}

// Submit creates or updates a record from the form. On success the page is
// reset. found is false when the record being edited has disappeared; the
// page is reset in that case too. A validation error keeps the form for
// correction.
func (p *Page[T, F]) Submit() (rec T, found bool, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.editing != 0 {
		rec, found, err = p.editor.Update(p.editing, p.form)
	} else {
		rec, err = p.editor.Create(p.form)
		found = err == nil
	}
	if err != nil {
		return rec, found, err
	}
	p.form = p.editor.BlankForm()
	p.editing = 0
	return rec, found, nil
}
