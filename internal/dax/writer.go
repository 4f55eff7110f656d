package dax

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shaiso/daxgen/internal/domain"
)

// Параметры документа.
const (
	Namespace      = "http://pegasus.isi.edu/schema/DAX"
	SchemaLocation = "http://pegasus.isi.edu/schema/DAX http://pegasus.isi.edu/schema/dax-3.6.xsd"
	Version        = "3.6"

	// Generator — имя генератора в комментарии документа.
	Generator = "daxgen"
)

// WriteWorkflow записывает workflow документом DAX.
//
// Задачи пишутся в порядке wf.Jobs, рёбра группируются по потомку в
// порядке первого появления. Аргументы задачи пишутся одной строкой:
// литералы текстом, ссылки на файлы элементами <file name="..."/>, через
// один пробел. Отступы вставляются только между элементами, внутри
// <argument> пробелы не добавляются.
func WriteWorkflow(w io.Writer, wf *domain.Workflow) error {
	p := &printer{w: bufio.NewWriter(w)}

	created := wf.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	p.printf("%s", xml.Header)
	p.printf("<!-- generated by: %s -->\n", Generator)
	p.printf("<!-- generated on: %s -->\n", created.UTC().Format(time.RFC3339))
	p.printf("<!-- run id: %s -->\n", wf.RunID)
	p.printf(`<adag xmlns="%s" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:schemaLocation="%s" version="%s" name="%s">`+"\n",
		Namespace, SchemaLocation, Version, escape(wf.Name))

	for _, job := range wf.Jobs {
		writeJob(p, job)
	}
	writeDependencies(p, wf.Dependencies)

	p.printf("</adag>\n")

	if p.err != nil {
		return fmt.Errorf("write workflow: %w", p.err)
	}
	if err := p.w.Flush(); err != nil {
		return fmt.Errorf("write workflow: %w", err)
	}
	return nil
}

func writeJob(p *printer, job *domain.Job) {
	p.printf(`  <job id="%s" name="%s" node-label="%s">`+"\n",
		escape(job.ID), escape(job.Name), escape(job.NodeLabel))

	if len(job.Arguments) > 0 {
		parts := make([]string, len(job.Arguments))
		for i, a := range job.Arguments {
			if a.IsFile() {
				parts[i] = fmt.Sprintf(`<file name="%s"/>`, escape(a.File.Name))
			} else {
				parts[i] = escape(a.Literal)
			}
		}
		p.printf("    <argument>%s</argument>\n", strings.Join(parts, " "))
	}

	if job.Stdout != nil {
		p.printf(`    <stdout name="%s" link="%s"/>`+"\n", escape(job.Stdout.Name), domain.LinkOutput)
	}
	if job.Stderr != nil {
		p.printf(`    <stderr name="%s" link="%s"/>`+"\n", escape(job.Stderr.Name), domain.LinkOutput)
	}
	for _, u := range job.Uses {
		p.printf(`    <uses name="%s" link="%s"/>`+"\n", escape(u.File.Name), u.Link)
	}

	p.printf("  </job>\n")
}

func writeDependencies(p *printer, deps []domain.Dependency) {
	parents := make(map[string][]string)
	children := make([]string, 0)

	for _, d := range deps {
		if _, seen := parents[d.Child]; !seen {
			children = append(children, d.Child)
		}
		parents[d.Child] = append(parents[d.Child], d.Parent)
	}

	for _, child := range children {
		p.printf(`  <child ref="%s">`+"\n", escape(child))
		for _, parent := range parents[child] {
			p.printf(`    <parent ref="%s"/>`+"\n", escape(parent))
		}
		p.printf("  </child>\n")
	}
}

// printer запоминает первую ошибку записи.
type printer struct {
	w   *bufio.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

// escape экранирует текст для XML (и для значений атрибутов).
func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
