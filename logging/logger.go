package logging

import (
	"fmt"
	"github.com/sirupsen/logrus"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	defaultConfig = Config{
		FileLevel:    logrus.DebugLevel,
		ConsoleLevel: logrus.InfoLevel,
	}
	defaultConfigLock sync.RWMutex

	defaultLogger     *logrus.Logger
	defaultLoggerOnce sync.Once
)

func SetDefaultConfig(config *Config) {
	defaultConfigLock.Lock()
	defer defaultConfigLock.Unlock()

	defaultConfig = *config
}

func currentConfig() Config {
	defaultConfigLock.RLock()
	defer defaultConfigLock.RUnlock()

	return defaultConfig
}

/*
Default 返回进程内共享的 logger，首次调用时按当前默认配置创建。
*/
func Default() *logrus.Logger {
	defaultLoggerOnce.Do(func() {
		defaultLogger = NewLogger()
	})
	return defaultLogger
}

/*
NewLogger 按当前默认配置创建一个新的 logger。控制台与文件通过 hook 分别过滤级别。
*/
func NewLogger() *logrus.Logger {
	return newLoggerWithConfig(currentConfig())
}

func newLoggerWithConfig(config Config) *logrus.Logger {
	logger := logrus.New()
	logger.Out = io.Discard
	logger.Level = maxLevel(config.FileLevel, config.ConsoleLevel)

	if !config.DisableConsole {
		writer := config.ConsoleWriter
		if writer == nil {
			writer = os.Stdout
		}
		logger.AddHook(&writerHook{
			writer:    writer,
			level:     config.ConsoleLevel,
			formatter: &logrus.TextFormatter{FullTimestamp: true},
		})
	}

	if len(config.FileDir) != 0 {
		hook, err := newFileHook(config.FileDir, config.FileLevel)
		if err != nil {
			fmt.Fprintf(os.Stderr, "create log file in [%s] fail: %v\n", config.FileDir, err)
		} else {
			logger.AddHook(hook)
		}
	}

	return logger
}

func maxLevel(a, b logrus.Level) logrus.Level {
	if a > b {
		return a
	}
	return b
}

type writerHook struct {
	lock      sync.Mutex
	writer    io.Writer
	level     logrus.Level
	formatter logrus.Formatter
}

func (h *writerHook) Levels() []logrus.Level {
	ret := make([]logrus.Level, 0, len(logrus.AllLevels))
	for _, lv := range logrus.AllLevels {
		if lv <= h.level {
			ret = append(ret, lv)
		}
	}
	return ret
}

func (h *writerHook) Fire(entry *logrus.Entry) error {
	data, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}

	h.lock.Lock()
	defer h.lock.Unlock()

	_, err = h.writer.Write(data)
	return err
}

/*
newFileHook 以天为单位创建日志文件 <dir>/<yyyy-mm-dd>.log，JSON 格式。
*/
func newFileHook(dir string, level logrus.Level) (*writerHook, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	name := filepath.Join(dir, time.Now().Format("2006-01-02")+".log")
	file, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}

	return &writerHook{
		writer:    file,
		level:     level,
		formatter: &logrus.JSONFormatter{},
	}, nil
}
