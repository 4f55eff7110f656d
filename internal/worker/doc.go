// Package worker обрабатывает запросы на генерацию из очереди
// daxgen.requests.
//
// Worker — stateless компонент: несколько экземпляров могут
// потреблять из одной очереди. Каждый запрос обрабатывается с
// ограничением по времени; паника обработчика превращается в
// постоянную ошибку, и сообщение уходит в DLQ.
//
//	w := worker.New(worker.Config{
//	    Conn:    conn,
//	    Handler: svc.HandleGenerate,
//	    Logger:  logger,
//	})
//
//	if err := w.Start(ctx); err != nil {
//	    return err
//	}
//	defer w.Stop()
package worker
