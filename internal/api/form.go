package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
)

// Form builds a multipart/form-data body. The boundary lives in the
// form's content type; callers never set the Content-Type header
// themselves.
type Form struct {
	buf    bytes.Buffer
	writer *multipart.Writer
	err    error
}

func NewForm() *Form {
	f := &Form{}
	f.writer = multipart.NewWriter(&f.buf)
	return f
}

func (f *Form) SetField(key, value string) {
	if f.err != nil {
		return
	}
	f.err = f.writer.WriteField(key, value)
}

func (f *Form) SetFile(key, filename string, content io.Reader) {
	if f.err != nil {
		return
	}
	part, err := f.writer.CreateFormFile(key, filename)
	if err != nil {
		f.err = err
		return
	}
	_, f.err = io.Copy(part, content)
}

// SetTargets flattens a target list the way the backend expects:
// targets[i][target_type] plus targets[i][group_id] or targets[i][user_id].
func (f *Form) SetTargets(targets []TargetInput) {
	for i, t := range targets {
		f.SetField(fmt.Sprintf("targets[%d][target_type]", i), string(t.Type))
		switch {
		case t.GroupID > 0:
			f.SetField(fmt.Sprintf("targets[%d][group_id]", i), fmt.Sprint(t.GroupID))
		case t.UserID > 0:
			f.SetField(fmt.Sprintf("targets[%d][user_id]", i), fmt.Sprint(t.UserID))
		}
	}
}

func (f *Form) ContentType() string {
	return f.writer.FormDataContentType()
}

// Reader finalizes the body. Call once, when handing the form to the
// transport.
func (f *Form) Reader() io.Reader {
	_ = f.writer.Close()
	return bytes.NewReader(f.buf.Bytes())
}

func (f *Form) Err() error {
	return f.err
}

// size reports the encoded body length; the progress uploads divide by it.
func (f *Form) size() int64 {
	return int64(f.buf.Len())
}
