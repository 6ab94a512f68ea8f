package model

const (
	Channels    = 3
	ImageSize   = 32
	InputLength = Channels * ImageSize * ImageSize
	NumClasses  = 10

	DefaultModelPath  = "model/model_scripted.pt"
	DefaultDevice     = "cpu"
	DefaultInputName  = "input"
	DefaultOutputName = "output"
)

// InputShape is the NCHW shape the model expects for a single image.
var InputShape = []int64{1, Channels, ImageSize, ImageSize}

// OutputShape is the shape of the per-class score vector.
var OutputShape = []int64{1, NumClasses}

// Classes are the CIFAR-10 labels in class index order.
var Classes = []string{
	"airplane", "automobile", "bird", "cat", "deer",
	"dog", "frog", "horse", "ship", "truck",
}

// InferenceConfig describes where the model lives and which device runs it.
type InferenceConfig struct {
	ModelPath  string `yaml:"path"`
	Device     string `yaml:"device"`
	InputName  string `yaml:"input_name"`
	OutputName string `yaml:"output_name"`
	// LibraryPath points at the onnxruntime shared library. Empty uses the
	// platform default lookup.
	LibraryPath string `yaml:"library_path"`
}

func DefaultInferenceConfig() InferenceConfig {
	return InferenceConfig{
		ModelPath:  DefaultModelPath,
		Device:     DefaultDevice,
		InputName:  DefaultInputName,
		OutputName: DefaultOutputName,
	}
}

type Prediction struct {
	Class  int       `json:"class"`
	Label  string    `json:"label"`
	Logits []float32 `json:"logits"`
}

type PredictionRequest struct {
	Image []float32 `json:"image"`
}
