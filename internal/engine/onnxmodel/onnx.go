package onnxmodel

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ortEnv manages global ONNX Runtime initialization (process-wide singleton).
var ortEnv struct {
	once sync.Once
	err  error
}

// initORT initializes the ONNX Runtime environment. Safe to call multiple
// times; only the first call has any effect.
func initORT(libPath string) error {
	ortEnv.once.Do(func() {
		ort.SetSharedLibraryPath(libPath)
		ortEnv.err = ort.InitializeEnvironment()
	})
	return ortEnv.err
}

// defaultInputSize is used for spatial dimensions the model leaves dynamic.
const defaultInputSize = 224

// modelInfo is what the classifier needs to know about a graph before it
// creates a session.
type modelInfo struct {
	inputName  string
	outputName string
	height     int
	width      int
	numClasses int64 // 0 when dynamic
}

// inspectModel validates that the model takes one NCHW image tensor and
// returns one [batch, classes] logits tensor.
func inspectModel(modelPath string) (modelInfo, error) {
	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return modelInfo{}, fmt.Errorf("onnx: failed to read model info: %w", err)
	}
	if len(inputs) != 1 {
		return modelInfo{}, fmt.Errorf("onnx: expected 1 input, got %d", len(inputs))
	}
	if len(outputs) == 0 {
		return modelInfo{}, fmt.Errorf("onnx: model has no outputs")
	}

	in := inputs[0].Dimensions
	if len(in) != 4 {
		return modelInfo{}, fmt.Errorf("onnx: expected 4D NCHW input, got %v", in)
	}
	if in[1] > 0 && in[1] != 3 {
		return modelInfo{}, fmt.Errorf("onnx: expected 3 input channels, got %d", in[1])
	}
	out := outputs[0].Dimensions
	if len(out) != 2 {
		return modelInfo{}, fmt.Errorf("onnx: expected 2D logits output, got %v", out)
	}

	info := modelInfo{
		inputName:  inputs[0].Name,
		outputName: outputs[0].Name,
		height:     spatial(in[2]),
		width:      spatial(in[3]),
	}
	if out[1] > 0 {
		info.numClasses = out[1]
	}
	return info, nil
}

func spatial(d int64) int {
	if d <= 0 {
		return defaultInputSize
	}
	return int(d)
}

// cudaAvailable reports whether the loaded runtime can append the CUDA
// execution provider.
func cudaAvailable() bool {
	cudaOpts, err := ort.NewCUDAProviderOptions()
	if err != nil {
		return false
	}
	defer cudaOpts.Destroy()

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return false
	}
	defer opts.Destroy()
	return opts.AppendExecutionProviderCUDA(cudaOpts) == nil
}

// onnxSession wraps a DynamicAdvancedSession for image classifiers.
type onnxSession struct {
	session *ort.DynamicAdvancedSession
	info    modelInfo
}

// newONNXSession creates an inference session, on CUDA when cuda is true.
func newONNXSession(modelPath string, info modelInfo, cuda bool) (*onnxSession, error) {
	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session options: %w", err)
	}
	defer opts.Destroy()
	opts.SetIntraOpNumThreads(4)
	opts.SetInterOpNumThreads(1)

	if cuda {
		cudaOpts, err := ort.NewCUDAProviderOptions()
		if err != nil {
			return nil, fmt.Errorf("onnx: cuda provider options: %w", err)
		}
		defer cudaOpts.Destroy()
		if err := opts.AppendExecutionProviderCUDA(cudaOpts); err != nil {
			return nil, fmt.Errorf("onnx: append cuda provider: %w", err)
		}
	}

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		[]string{info.inputName},
		[]string{info.outputName},
		opts,
	)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session: %w", err)
	}
	return &onnxSession{session: session, info: info}, nil
}

// infer runs one forward pass over a flat NCHW float32 batch and returns the
// logits as a flat [batchSize * numClasses] slice.
func (s *onnxSession) infer(pixels []float32, batchSize int64, numClasses int64) ([]float32, error) {
	shape := ort.NewShape(batchSize, 3, int64(s.info.height), int64(s.info.width))
	tIn, err := ort.NewTensor(shape, pixels)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create input tensor: %w", err)
	}
	defer tIn.Destroy()

	tOut, err := ort.NewEmptyTensor[float32](ort.NewShape(batchSize, numClasses))
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create output tensor: %w", err)
	}
	defer tOut.Destroy()

	if err := s.session.Run([]ort.Value{tIn}, []ort.Value{tOut}); err != nil {
		return nil, fmt.Errorf("onnx: inference failed: %w", err)
	}

	// Copy data out before tensor is destroyed.
	src := tOut.GetData()
	result := make([]float32, len(src))
	copy(result, src)
	return result, nil
}

// close releases the ONNX session resources.
func (s *onnxSession) close() error {
	return s.session.Destroy()
}
