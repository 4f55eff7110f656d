package service

import (
	"context"
	"fmt"

	"github.com/shaiso/daxgen/internal/mq"
	"github.com/shaiso/daxgen/internal/telemetry"
)

// HandleGenerate обрабатывает запрос workflow.generate из очереди.
//
// Ошибки, которые не исчезнут при повторе (формат, форма графа,
// атрибуты, шаблоны), помечаются mq.ErrPermanent.
func (s *Service) HandleGenerate(ctx context.Context, d *mq.Delivery) error {
	if d.Message.Type != mq.MessageTypeGenerate {
		return fmt.Errorf("%w: unexpected message type %q", mq.ErrPermanent, d.Message.Type)
	}

	req, err := mq.ParsePayload[mq.GenerateRequest](&d.Message)
	if err != nil {
		return err
	}

	logger := s.logger.With("message_id", d.Message.ID, "source", req.Source)
	ctx = telemetry.WithLogger(ctx, logger)

	res, err := s.Run(ctx, Request{
		Source:       req.Source,
		WorkflowPath: req.WorkflowPath,
		CatalogPath:  req.CatalogPath,
		Options: Options{
			Name: req.Name,
			Vars: req.Vars,
		},
	})
	if err != nil {
		if Permanent(err) {
			return fmt.Errorf("%w: %v", mq.ErrPermanent, err)
		}
		return err
	}

	logger.Info("generate request completed", "run_id", res.Workflow.RunID)
	return nil
}

// Permanent возвращает true для ошибок, которые не исчезнут при повторе.
// Повторяются только ошибки ввода-вывода.
func Permanent(err error) bool {
	return ErrorKind(err) != KindIO
}
