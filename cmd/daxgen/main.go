// daxgen — компилятор двудольных графов файлов и задач в Pegasus DAX
// и каталог реплик.
//
// Использование:
//
//	daxgen [--config FILE] [--var key=value] [--json] <command> [flags]
//
// Команды:
//
//	generate  Сгенерировать DAX и каталог реплик из графа
//	inspect   Показать структуру графа, DAX или каталога
//	formats   Список поддерживаемых форматов графа
//	convert   Перевести граф в другой формат
//	graph     Управление графами в PostgreSQL
//	serve     HTTP API
//	worker    Обработчик запросов из RabbitMQ
//	remote    Команды к HTTP API
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shaiso/daxgen/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCmd(version).ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
