package extract

import (
	"fmt"

	"github.com/ledongthuc/pdf"
)

// Info holds document-level metadata read without extracting any text.
type Info struct {
	PageCount int
	Title     string
	Author    string
	Subject   string
	Creator   string
}

// ReadInfo returns the page count and the trailer Info dictionary fields.
// Engine faults are reported as an error; callers treat info as best-effort.
func ReadInfo(path string) (_ *Info, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	info := &Info{PageCount: reader.NumPage()}

	dict := reader.Trailer().Key("Info")
	if !dict.IsNull() {
		info.Title = dict.Key("Title").Text()
		info.Author = dict.Key("Author").Text()
		info.Subject = dict.Key("Subject").Text()
		info.Creator = dict.Key("Creator").Text()
	}

	return info, nil
}
