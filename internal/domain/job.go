package domain

import "strings"

// Link — направление использования файла задачей.
type Link string

const (
	// LinkInput — файл читается задачей.
	LinkInput Link = "input"

	// LinkOutput — файл производится задачей.
	LinkOutput Link = "output"
)

// Use — объявление использования файла задачей.
type Use struct {
	// File — используемый файл.
	File *File `json:"file"`

	// Link — направление (input или output).
	Link Link `json:"link"`
}

// Argument — один элемент командной строки задачи.
//
// Либо литерал (Literal), либо ссылка на файл каталога (File != nil).
type Argument struct {
	// Literal — строковое значение аргумента.
	Literal string `json:"literal,omitempty"`

	// File — ссылка на запись каталога, если токен совпал с lfn.
	File *File `json:"file,omitempty"`
}

// IsFile возвращает true, если аргумент — ссылка на файл.
func (a Argument) IsFile() bool {
	return a.File != nil
}

// String возвращает текстовое представление аргумента.
func (a Argument) String() string {
	if a.File != nil {
		return a.File.Name
	}
	return a.Literal
}

// Job — описание задачи в абстрактном workflow.
//
// Строится один раз из узла-задачи и его окрестности в графе,
// после построения не изменяется.
type Job struct {
	// ID — идентификатор задачи (совпадает с ID узла графа).
	ID string `json:"id"`

	// Name — имя исполняемого файла (exec_name).
	Name string `json:"name"`

	// NodeLabel — метка узла: <exec_name>_<id>.
	NodeLabel string `json:"node_label"`

	// Arguments — аргументы командной строки с подставленными файлами.
	Arguments []Argument `json:"arguments,omitempty"`

	// Uses — объявленные входы и выходы в порядке добавления.
	Uses []Use `json:"uses,omitempty"`

	// Stdout — файл стандартного вывода.
	Stdout *File `json:"stdout,omitempty"`

	// Stderr — файл стандартного потока ошибок.
	Stderr *File `json:"stderr,omitempty"`
}

// Inputs возвращает входные файлы задачи.
func (j *Job) Inputs() []*File {
	return j.filesByLink(LinkInput)
}

// Outputs возвращает выходные файлы задачи.
func (j *Job) Outputs() []*File {
	return j.filesByLink(LinkOutput)
}

func (j *Job) filesByLink(link Link) []*File {
	files := make([]*File, 0)
	for _, u := range j.Uses {
		if u.Link == link {
			files = append(files, u.File)
		}
	}
	return files
}

// CommandLine возвращает аргументы одной строкой, через пробел.
func (j *Job) CommandLine() string {
	parts := make([]string, len(j.Arguments))
	for i, a := range j.Arguments {
		parts[i] = a.String()
	}
	return strings.Join(parts, " ")
}
