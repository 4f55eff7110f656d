package dax

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/shaiso/daxgen/internal/domain"
)

// ErrInvalidReplica означает, что поле реплики нельзя записать в каталог:
// оно пустое или содержит пробельные символы.
var ErrInvalidReplica = errors.New("invalid replica field")

// WriteReplicaCatalog записывает каталог реплик.
//
// Одна строка на реплику: "<lfn> <url> <site>". Файлы без реплик не
// пишутся. Порядок строк совпадает с порядком каталога и реплик.
// Поля проверяются до записи, чтобы каталог всегда читался обратно
// через ReadReplicaCatalog.
func WriteReplicaCatalog(w io.Writer, c *domain.Catalog) error {
	bw := bufio.NewWriter(w)

	for _, f := range c.WithReplicas() {
		for _, r := range f.Replicas {
			if err := checkReplica(f.Name, r); err != nil {
				return err
			}
			if _, err := fmt.Fprintf(bw, "%s %s %s\n", f.Name, r.URL, r.Site); err != nil {
				return fmt.Errorf("write replica catalog: %w", err)
			}
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write replica catalog: %w", err)
	}
	return nil
}

func checkReplica(lfn string, r domain.Replica) error {
	for _, field := range []struct{ name, value string }{
		{"lfn", lfn},
		{"url", r.URL},
		{"site", r.Site},
	} {
		if field.value == "" || strings.ContainsFunc(field.value, unicode.IsSpace) {
			return fmt.Errorf("file %q: %s %q: %w", lfn, field.name, field.value, ErrInvalidReplica)
		}
	}
	return nil
}

// ReadReplicaCatalog читает каталог реплик.
//
// Пустые строки и строки, начинающиеся с #, пропускаются. Строки одного
// lfn собираются в одну запись в порядке появления.
func ReadReplicaCatalog(r io.Reader) (*domain.Catalog, error) {
	c := domain.NewCatalog()
	scanner := bufio.NewScanner(r)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, fmt.Errorf("replica catalog line %d: expected \"lfn url site\", got %d fields", lineNo, len(fields))
		}

		f, ok := c.Get(fields[0])
		if !ok {
			f = domain.NewFile(fields[0])
			c.Put(f)
		}
		f.AddReplica(fields[1], fields[2])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read replica catalog: %w", err)
	}

	return c, nil
}
