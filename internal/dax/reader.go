package dax

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Document — разобранный документ DAX.
type Document struct {
	XMLName  xml.Name   `xml:"adag"`
	Version  string     `xml:"version,attr"`
	Name     string     `xml:"name,attr"`
	Jobs     []JobElem  `xml:"job"`
	Children []ChildRef `xml:"child"`
}

// JobElem — элемент <job>.
type JobElem struct {
	ID        string    `xml:"id,attr"`
	Name      string    `xml:"name,attr"`
	NodeLabel string    `xml:"node-label,attr"`
	Argument  ArgElem   `xml:"argument"`
	Stdout    *FileRef  `xml:"stdout"`
	Stderr    *FileRef  `xml:"stderr"`
	Uses      []FileRef `xml:"uses"`
}

// FileRef — элементы <uses>, <stdout>, <stderr>.
type FileRef struct {
	Name string `xml:"name,attr"`
	Link string `xml:"link,attr"`
}

// ArgItem — токен аргументов: литерал или ссылка на файл.
type ArgItem struct {
	Literal string
	File    string
}

// ArgElem — содержимое <argument>.
type ArgElem struct {
	Items []ArgItem
}

// UnmarshalXML разбирает смешанное содержимое <argument>.
func (a *ArgElem) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.CharData:
			for _, field := range strings.Fields(string(t)) {
				a.Items = append(a.Items, ArgItem{Literal: field})
			}
		case xml.StartElement:
			if t.Name.Local != "file" {
				if err := d.Skip(); err != nil {
					return err
				}
				continue
			}
			var f FileRef
			if err := d.DecodeElement(&f, &t); err != nil {
				return err
			}
			a.Items = append(a.Items, ArgItem{File: f.Name})
		case xml.EndElement:
			return nil
		}
	}
}

// String возвращает аргументы строкой, как их увидит задача.
func (a ArgElem) String() string {
	parts := make([]string, len(a.Items))
	for i, it := range a.Items {
		if it.File != "" {
			parts[i] = it.File
		} else {
			parts[i] = it.Literal
		}
	}
	return strings.Join(parts, " ")
}

// ChildRef — элемент <child> с родителями.
type ChildRef struct {
	Ref     string      `xml:"ref,attr"`
	Parents []ParentRef `xml:"parent"`
}

// ParentRef — элемент <parent>.
type ParentRef struct {
	Ref string `xml:"ref,attr"`
}

// ReadWorkflow разбирает документ DAX.
func ReadWorkflow(r io.Reader) (*Document, error) {
	var doc Document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("read workflow: %w", err)
	}
	return &doc, nil
}

// Job возвращает задачу по ID.
func (d *Document) Job(id string) (*JobElem, bool) {
	for i := range d.Jobs {
		if d.Jobs[i].ID == id {
			return &d.Jobs[i], true
		}
	}
	return nil, false
}

// DependencyCount возвращает количество рёбер <parent>.
func (d *Document) DependencyCount() int {
	n := 0
	for _, c := range d.Children {
		n += len(c.Parents)
	}
	return n
}

// Check проверяет ссылочную целостность документа: каждый ref в
// <child>/<parent> указывает на существующую задачу.
func (d *Document) Check() error {
	ids := make(map[string]bool, len(d.Jobs))
	for _, j := range d.Jobs {
		if ids[j.ID] {
			return fmt.Errorf("duplicate job id %q", j.ID)
		}
		ids[j.ID] = true
	}
	for _, c := range d.Children {
		if !ids[c.Ref] {
			return fmt.Errorf("child ref %q: unknown job", c.Ref)
		}
		for _, p := range c.Parents {
			if !ids[p.Ref] {
				return fmt.Errorf("parent ref %q of %q: unknown job", p.Ref, c.Ref)
			}
		}
	}
	return nil
}
