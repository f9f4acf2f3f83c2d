package models

// TimeFormat is the human-readable timestamp format used in all API payloads.
const TimeFormat = "2006-01-02 15:04:05"

// UploadInfo describes the stored original image of a result record.
type UploadInfo struct {
	OriginalName string `json:"original_name"`
	Path         string `json:"upload_path"`
	Size         int64  `json:"upload_size"`
	ModTime      string `json:"upload_time"`
}

// VisualizationInfo describes the annotated output image of a result record.
type VisualizationInfo struct {
	Path    string `json:"vis_path"`
	Size    int64  `json:"vis_size"`
	ModTime string `json:"vis_time"`
}

// ResultRecord pairs an upload with its visualization for one
// (category, timestamp key). It is derived from the directory tree on
// every listing and never persisted. At least one side is always set;
// either side alone is valid (inference failed, or the upload was
// deleted separately).
type ResultRecord struct {
	ID            string             `json:"id"`
	Category      string             `json:"category"`
	Timestamp     string             `json:"timestamp"`
	Upload        *UploadInfo        `json:"upload_info"`
	Visualization *VisualizationInfo `json:"visualization_info"`
}

// ResultSummary aggregates one listing's result set.
type ResultSummary struct {
	TotalResults    int      `json:"total_results"`
	Categories      []string `json:"categories"`
	TotalUploadSize int64    `json:"total_upload_size"`
	TotalVisSize    int64    `json:"total_vis_size"`
}
