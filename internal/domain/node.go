package domain

// NodeType — класс узла двудольного графа.
//
// Назначается один раз классификатором и дальше не выводится заново:
// все последующие стадии читают только это значение.
type NodeType int

const (
	// NodeFile — узел-файл (данные).
	NodeFile NodeType = 0

	// NodeTask — узел-задача (исполняемая программа).
	NodeTask NodeType = 1
)

// String возвращает человекочитаемое имя класса.
func (t NodeType) String() string {
	switch t {
	case NodeFile:
		return "file"
	case NodeTask:
		return "task"
	default:
		return "unknown"
	}
}

// Имена атрибутов узлов графа.
const (
	// AttrLFN — логическое имя файла (обязательно для файлов).
	AttrLFN = "lfn"

	// AttrPFN — физические адреса файла через запятую.
	AttrPFN = "pfn"

	// AttrSites — сайты для каждого адреса из pfn.
	AttrSites = "sites"

	// AttrStreams — битовая маска потоков (бит 0 — stdout, бит 1 — stderr).
	AttrStreams = "streams"

	// AttrIgnore — файл не объявляется как вход/выход задачи.
	AttrIgnore = "ignore"

	// AttrExecName — имя исполняемого файла (обязательно для задач).
	AttrExecName = "exec_name"

	// AttrExecArgs — строка аргументов задачи.
	AttrExecArgs = "exec_args"

	// AttrNodeType — метка класса, которую ставит классификатор.
	AttrNodeType = "node_type"
)

// StreamMask — битовая маска стандартных потоков задачи.
type StreamMask int

const (
	// StreamStdout — файл принимает стандартный вывод.
	StreamStdout StreamMask = 1 << 0

	// StreamStderr — файл принимает стандартный поток ошибок.
	StreamStderr StreamMask = 1 << 1
)

// Has проверяет, установлен ли бит потока.
func (m StreamMask) Has(s StreamMask) bool {
	return m&s != 0
}

// DefaultSite — сайт по умолчанию для реплик без явного сайта.
const DefaultSite = "condorpool"
