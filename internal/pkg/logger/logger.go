package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger define a interface para logging estruturado.
// A aplicação (Handler, Service, Repository) deve depender apenas desta interface.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error)
	Fatal(msg string, err error)
}

// Conf define destino e nível dos logs.
type Conf struct {
	Level      string // debug | info | warn | error
	Output     string // stdout | file
	File       string // caminho do arquivo quando Output = file
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// ZapLogger é a implementação concreta da interface Logger sobre o zap (saída JSON).
type ZapLogger struct {
	log *zap.Logger
}

// NewLogger cria um Logger em stdout com o nível informado.
func NewLogger(level string) Logger {
	l, err := NewLoggerWithConfig(Conf{Level: level, Output: "stdout"})
	if err != nil {
		// Só falha com arquivo; stdout sempre é válido.
		return NewNop()
	}
	return l
}

// NewLoggerWithConfig cria o Logger a partir da configuração completa.
func NewLoggerWithConfig(conf Conf) (Logger, error) {
	var ws zapcore.WriteSyncer
	switch conf.Output {
	case "", "stdout":
		ws = zapcore.AddSync(os.Stdout)
	case "file":
		if conf.File == "" {
			return nil, fmt.Errorf("LOG_FILE é obrigatório quando LOG_OUTPUT=file")
		}
		ws = zapcore.AddSync(&lumberjack.Logger{
			Filename:   conf.File,
			MaxSize:    orDefault(conf.MaxSizeMB, 100),
			MaxBackups: orDefault(conf.MaxBackups, 10),
			MaxAge:     orDefault(conf.MaxAgeDays, 7),
			Compress:   true,
		})
	default:
		return nil, fmt.Errorf("saída de log desconhecida: %q", conf.Output)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.MessageKey = "message"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), ws, parseLevel(conf.Level))
	return &ZapLogger{log: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))}, nil
}

// NewNop devolve um Logger que descarta tudo (útil em testes).
func NewNop() Logger {
	return &ZapLogger{log: zap.NewNop()}
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func toZapFields(fields map[string]interface{}) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		out = append(out, zap.Any(k, v))
	}
	return out
}

// Implementações da Interface Logger

func (l *ZapLogger) Debug(msg string, fields map[string]interface{}) {
	l.log.Debug(msg, toZapFields(fields)...)
}

func (l *ZapLogger) Info(msg string, fields map[string]interface{}) {
	l.log.Info(msg, toZapFields(fields)...)
}

func (l *ZapLogger) Warn(msg string, fields map[string]interface{}) {
	l.log.Warn(msg, toZapFields(fields)...)
}

func (l *ZapLogger) Error(msg string, err error) {
	l.log.Error(msg, zap.Error(err))
}

// Fatal registra o erro e encerra o processo.
func (l *ZapLogger) Fatal(msg string, err error) {
	l.log.Fatal(msg, zap.Error(err))
}

// Sync descarrega buffers pendentes; chamado no encerramento do main.
func (l *ZapLogger) Sync() error {
	return l.log.Sync()
}
