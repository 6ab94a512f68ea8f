package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Runner executes a forward pass on a (1, 3, 32, 32) input and returns the
// per-class logits.
type Runner interface {
	Run(input []float32) ([]float32, error)
	Close() error
}

// Opener builds a Runner for a model file that is known to exist.
type Opener func(cfg InferenceConfig) (Runner, error)

// Loader owns a loaded model. It is never mutated after Load returns, so a
// single Loader can be shared by callers.
type Loader struct {
	cfg    InferenceConfig
	path   string
	runner Runner
	logger *zap.Logger
}

// Load resolves cfg.ModelPath and opens the model with open. A nil open uses
// the ONNX runtime backend.
func Load(cfg InferenceConfig, open Opener, logger *zap.Logger) (*Loader, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if open == nil {
		open = OpenONNX
	}

	path, err := filepath.Abs(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve model path %q: %w", cfg.ModelPath, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat model: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrModelNotFound, path)
	}

	logger.Info("loading model", zap.String("path", path), zap.String("device", cfg.Device))

	resolved := cfg
	resolved.ModelPath = path
	runner, err := open(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}

	logger.Info("model loaded", zap.String("path", path))

	return &Loader{
		cfg:    resolved,
		path:   path,
		runner: runner,
		logger: logger,
	}, nil
}

// Path returns the absolute path of the loaded model.
func (l *Loader) Path() string {
	return l.path
}

func (l *Loader) Config() InferenceConfig {
	return l.cfg
}

// PredictFromFlat returns the predicted class index for a flattened CHW image.
func (l *Loader) PredictFromFlat(flat []float32) (int, error) {
	logits, err := l.forward(flat)
	if err != nil {
		return 0, err
	}
	return argmax(logits), nil
}

// Classify is PredictFromFlat plus the class label and raw logits.
func (l *Loader) Classify(flat []float32) (*Prediction, error) {
	logits, err := l.forward(flat)
	if err != nil {
		return nil, err
	}
	class := argmax(logits)
	return &Prediction{
		Class:  class,
		Label:  Classes[class],
		Logits: logits,
	}, nil
}

func (l *Loader) Close() error {
	return l.runner.Close()
}

func (l *Loader) forward(flat []float32) ([]float32, error) {
	if len(flat) != InputLength {
		return nil, &InputLengthError{Expected: InputLength, Got: len(flat)}
	}

	logits, err := l.runner.Run(flat)
	if err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	if len(logits) != NumClasses {
		return nil, fmt.Errorf("%w: got %d scores, want %d", ErrUnexpectedOutput, len(logits), NumClasses)
	}

	l.logger.Debug("inference complete", zap.Float32s("logits", logits))
	return logits, nil
}

// argmax returns the index of the largest score. Ties go to the lowest index.
func argmax(scores []float32) int {
	maxIdx := 0
	maxVal := scores[0]
	for i, val := range scores[1:] {
		if val > maxVal {
			maxVal = val
			maxIdx = i + 1
		}
	}
	return maxIdx
}
