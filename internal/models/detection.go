package models

// BoundingBox is an axis-aligned detection box in pixel coordinates.
type BoundingBox struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Detection is a single detected object.
type Detection struct {
	ClassID    int         `json:"class_id"`
	ClassName  string      `json:"class_name"`
	Confidence float64     `json:"confidence"`
	Box        BoundingBox `json:"box"`
}

// InferenceResult is the payload returned for one inferred image.
// Category, OriginalFilename, UploadPath and InferenceTime are filled
// by the API layer, not the engine.
type InferenceResult struct {
	Detections        []Detection `json:"detections"`
	DetectionCount    int         `json:"detection_count"`
	ClassID           *int        `json:"class_id"`
	ClassName         string      `json:"class_name,omitempty"`
	Confidence        float64     `json:"confidence,omitempty"`
	VisualizationPath string      `json:"visualization_path,omitempty"`
	ElapsedMs         int64       `json:"inference_time_ms"`

	Category         string `json:"category,omitempty"`
	OriginalFilename string `json:"original_filename,omitempty"`
	UploadPath       string `json:"upload_path,omitempty"`
	InferenceTime    string `json:"inference_time,omitempty"`
}

// BatchItemResult is the per-file outcome of a multi-file upload.
type BatchItemResult struct {
	Index    int              `json:"index"`
	Filename string           `json:"filename"`
	OK       bool             `json:"ok"`
	Msg      string           `json:"msg"`
	Data     *InferenceResult `json:"data"`
}

// BatchSummary aggregates a multi-file upload.
type BatchSummary struct {
	TotalFiles   int               `json:"total_files"`
	SuccessCount int               `json:"success_count"`
	FailedCount  int               `json:"failed_count"`
	Results      []BatchItemResult `json:"results"`
}
