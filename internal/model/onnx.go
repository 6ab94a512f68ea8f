package model

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// onnxRunner runs a model through onnxruntime with input and output tensors
// bound once at session creation.
type onnxRunner struct {
	mu           sync.Mutex
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
}

// OpenONNX is the default Opener.
func OpenONNX(cfg InferenceConfig) (Runner, error) {
	if cfg.LibraryPath != "" {
		ort.SetSharedLibraryPath(cfg.LibraryPath)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
		}
	}

	options, err := sessionOptions(cfg.Device)
	if err != nil {
		return nil, err
	}
	if options != nil {
		defer options.Destroy()
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(InputShape...))
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(OutputShape...))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(cfg.ModelPath,
		[]string{cfg.InputName}, []string{cfg.OutputName},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		options)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &onnxRunner{
		session:      session,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
	}, nil
}

// sessionOptions maps a device string to session options. A nil result means
// the runtime defaults, which run on the CPU.
func sessionOptions(device string) (*ort.SessionOptions, error) {
	kind, id, err := parseDevice(device)
	if err != nil {
		return nil, err
	}
	if kind == "cpu" {
		return nil, nil
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	cudaOptions, err := ort.NewCUDAProviderOptions()
	if err != nil {
		options.Destroy()
		return nil, fmt.Errorf("failed to create CUDA options: %w", err)
	}
	defer cudaOptions.Destroy()

	if err := cudaOptions.Update(map[string]string{"device_id": strconv.Itoa(id)}); err != nil {
		options.Destroy()
		return nil, fmt.Errorf("failed to configure CUDA device %d: %w", id, err)
	}
	if err := options.AppendExecutionProviderCUDA(cudaOptions); err != nil {
		options.Destroy()
		return nil, fmt.Errorf("failed to enable CUDA: %w", err)
	}
	return options, nil
}

// parseDevice accepts "cpu", "cuda" and "cuda:<id>".
func parseDevice(device string) (string, int, error) {
	d := strings.ToLower(strings.TrimSpace(device))
	switch {
	case d == "cpu":
		return "cpu", 0, nil
	case d == "cuda":
		return "cuda", 0, nil
	case strings.HasPrefix(d, "cuda:"):
		id, err := strconv.Atoi(strings.TrimPrefix(d, "cuda:"))
		if err != nil || id < 0 {
			return "", 0, fmt.Errorf("%w: %q", ErrUnsupportedDevice, device)
		}
		return "cuda", id, nil
	default:
		return "", 0, fmt.Errorf("%w: %q", ErrUnsupportedDevice, device)
	}
}

func (r *onnxRunner) Run(input []float32) ([]float32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	copy(r.inputTensor.GetData(), input)

	if err := r.session.Run(); err != nil {
		return nil, err
	}

	out := make([]float32, len(r.outputTensor.GetData()))
	copy(out, r.outputTensor.GetData())
	return out, nil
}

func (r *onnxRunner) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.inputTensor != nil {
		r.inputTensor.Destroy()
		r.inputTensor = nil
	}
	if r.outputTensor != nil {
		r.outputTensor.Destroy()
		r.outputTensor = nil
	}
	if r.session != nil {
		r.session.Destroy()
		r.session = nil
	}
	return ort.DestroyEnvironment()
}
