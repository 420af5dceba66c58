package actorutil

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"thermacore/internal/core/domain"
	"thermacore/internal/mqtt"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/lmittmann/tint"
	"go.uber.org/zap"
)

func PipeToSelfWithRecover(ctx actor.Context, future *actor.Future, mapFn func(error) any) {
	ctx.ReenterAfter(future, func(msg any, err error) {
		if err != nil {
			ctx.Send(ctx.Self(), mapFn(err))
			return
		}
		ctx.Send(ctx.Self(), msg)
	})
}

func NewActorSystemWithZapLogger(logger *zap.Logger) *actor.ActorSystem {
	stdOutLogger := zap.NewStdLog(logger)

	var slogLevel slog.Level = slog.LevelInfo

	switch logger.Level() {
	case zap.DebugLevel:
		slogLevel = slog.LevelDebug
	case zap.InfoLevel:
		slogLevel = slog.LevelInfo
	case zap.WarnLevel:
		slogLevel = slog.LevelWarn
	case zap.ErrorLevel, zap.PanicLevel, zap.FatalLevel:
		slogLevel = slog.LevelError
	}

	return actor.NewActorSystem(actor.WithLoggerFactory(func(system *actor.ActorSystem) *slog.Logger {
		return slog.New(tint.NewHandler(stdOutLogger.Writer(), &tint.Options{
			Level:      slogLevel,
			TimeFormat: time.DateTime,
		}))
	}))
}

func ActorLogger(actorName string, logger *zap.Logger) *zap.Logger {
	return logger.With(zap.String("actor", actorName))
}

// ParsedMQTTCommandToCommand maps a unit switch command to the request the
// unit control actor commits directly.
func ParsedMQTTCommandToCommand(cmd mqtt.ParsedMQTTCommand) (domain.UnitRequest, error) {
	if cmd.Command != mqtt.COMMAND_SWITCH || cmd.UnitId == "" {
		return nil, fmt.Errorf("unsupported command %q", cmd.Command)
	}
	control, err := domain.ParseControlId(cmd.DeviceId)
	if err != nil {
		return nil, err
	}
	var on bool
	switch cmd.Payload {
	case mqtt.MQTT_PAYLOAD_ON:
		on = true
	case mqtt.MQTT_PAYLOAD_OFF:
		on = false
	default:
		return nil, errors.New("switch payload must be on or off")
	}
	return domain.CommitToggleRequest{
		UnitRequestMixIn: domain.UnitRequestMixIn{UnitId: cmd.UnitId},
		Control:          control,
		On:               on,
	}, nil
}
