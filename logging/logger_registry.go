package logging

import (
	"regexp"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// Registry tracks named loggers so that their levels can be driven by pattern configs.
type Registry struct {
	mu        sync.RWMutex
	loggers   map[string]Logger
	logConfig []LoggerPatternConfig
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		loggers: make(map[string]Logger),
	}
}

// GetOrRegister will either:
//   - return an existing logger for the input logger `name` or
//   - register the input `logger` for the given logger `name` and configure it based on the
//     existing patterns.
func (lr *Registry) GetOrRegister(name string, logger Logger) Logger {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	if existingLogger, ok := lr.loggers[name]; ok {
		return existingLogger
	}

	lr.loggers[name] = logger
	for _, lpc := range lr.logConfig {
		if level, ok := matchPattern(lpc, name); ok {
			logger.SetLevel(level)
		}
	}
	return logger
}

// LoggerNamed returns the registered logger with the given name.
func (lr *Registry) LoggerNamed(name string) (logger Logger, ok bool) {
	lr.mu.RLock()
	defer lr.mu.RUnlock()
	logger, ok = lr.loggers[name]
	return
}

// UpdateLoggerLevel sets the level of a single registered logger.
func (lr *Registry) UpdateLoggerLevel(name string, level Level) error {
	lr.mu.RLock()
	defer lr.mu.RUnlock()
	logger, ok := lr.loggers[name]
	if !ok {
		return errors.Errorf("logger named %s not recognized", name)
	}
	logger.SetLevel(level)
	return nil
}

// UpdateConfig applies the pattern configs to every registered logger. Later patterns win over
// earlier ones. Loggers matching no pattern are reset to INFO. Invalid patterns are skipped with
// a warning on `errorLogger`.
func (lr *Registry) UpdateConfig(logConfig []LoggerPatternConfig, errorLogger Logger) error {
	for _, lpc := range logConfig {
		if _, err := LevelFromString(lpc.Level); err != nil {
			return err
		}
	}

	lr.mu.Lock()
	defer lr.mu.Unlock()
	lr.logConfig = logConfig

	appliedConfigs := make(map[string]Level)
	for _, lpc := range logConfig {
		if !ValidatePattern(lpc.Pattern) {
			errorLogger.Warnw("failed to validate a pattern", "pattern", lpc.Pattern)
			continue
		}
		for name := range lr.loggers {
			if level, ok := matchPattern(lpc, name); ok {
				appliedConfigs[name] = level
			}
		}
	}

	for name, logger := range lr.loggers {
		level, ok := appliedConfigs[name]
		if !ok {
			level = INFO
		}
		logger.SetLevel(level)
	}
	return nil
}

// RegisteredLoggerNames returns the sorted names of all registered loggers.
func (lr *Registry) RegisteredLoggerNames() []string {
	lr.mu.RLock()
	defer lr.mu.RUnlock()
	registeredNames := make([]string, 0, len(lr.loggers))
	for name := range lr.loggers {
		registeredNames = append(registeredNames, name)
	}
	sort.Strings(registeredNames)
	return registeredNames
}

func matchPattern(lpc LoggerPatternConfig, name string) (Level, bool) {
	if !ValidatePattern(lpc.Pattern) {
		return INFO, false
	}
	r, err := regexp.Compile(buildRegexFromPattern(lpc.Pattern))
	if err != nil || !r.MatchString(name) {
		return INFO, false
	}
	level, err := LevelFromString(lpc.Level)
	if err != nil {
		return INFO, false
	}
	return level, true
}
