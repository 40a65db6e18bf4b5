package upstream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"sort"
	"strconv"
)

// FilePart is a binary field attached to a form submission.
type FilePart struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Form carries the validated fields of a draft record on their way to the
// backend. A form with at least one file part is encoded as multipart form
// data; otherwise it is submitted as a JSON object.
type Form struct {
	fields map[string]string
	files  map[string]FilePart
}

// NewForm builds an empty form.
func NewForm() *Form {
	return &Form{
		fields: make(map[string]string),
		files:  make(map[string]FilePart),
	}
}

// SetField records a string part. Empty optional values are omitted from the
// submission entirely.
func (f *Form) SetField(name, value string) *Form {
	if value == "" {
		delete(f.fields, name)
		return f
	}
	f.fields[name] = value
	return f
}

// SetInt records a numeric part, notably the record id on updates.
func (f *Form) SetInt(name string, value int64) *Form {
	f.fields[name] = strconv.FormatInt(value, 10)
	return f
}

// SetFile records a binary part.
func (f *Form) SetFile(name string, part FilePart) *Form {
	f.files[name] = part
	return f
}

// HasFiles reports whether the form must be encoded as multipart.
func (f *Form) HasFiles() bool {
	return len(f.files) > 0
}

// Field returns a previously set string part.
func (f *Form) Field(name string) string {
	return f.fields[name]
}

// EncodeJSON renders the string parts as a JSON object.
func (f *Form) EncodeJSON() ([]byte, error) {
	return json.Marshal(f.fields)
}

// EncodeMultipart renders all parts as multipart form data and returns the
// body along with its content type (which carries the boundary).
func (f *Form) EncodeMultipart() ([]byte, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	names := make([]string, 0, len(f.fields))
	for name := range f.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writer.WriteField(name, f.fields[name]); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", name, err)
		}
	}

	fileNames := make([]string, 0, len(f.files))
	for name := range f.files {
		fileNames = append(fileNames, name)
	}
	sort.Strings(fileNames)
	for _, name := range fileNames {
		part := f.files[name]
		fw, err := writer.CreateFormFile(name, part.Filename)
		if err != nil {
			return nil, "", fmt.Errorf("create file part %s: %w", name, err)
		}
		if _, err := fw.Write(part.Data); err != nil {
			return nil, "", fmt.Errorf("write file part %s: %w", name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return body.Bytes(), writer.FormDataContentType(), nil
}
