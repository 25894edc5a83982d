package domain

// Viewer zoom bounds.
const (
	MinScale     = 0.5
	MaxScale     = 4.0
	ScaleStep    = 0.25
	DefaultScale = 1.0
)

// ClampScale bounds a zoom factor to [MinScale, MaxScale].
func ClampScale(scale float64) float64 {
	if scale < MinScale {
		return MinScale
	}
	if scale > MaxScale {
		return MaxScale
	}
	return scale
}

// ClampPage bounds a page number to [1, pageCount].
func ClampPage(page, pageCount int) int {
	if pageCount < 1 {
		pageCount = 1
	}
	if page < 1 {
		return 1
	}
	if page > pageCount {
		return pageCount
	}
	return page
}

// ViewerRequest asks the viewer to show a page of a document.
type ViewerRequest struct {
	DocumentID string
	Page       int
	Clause     string
	Scale      float64
}

// PageView is the content shown for a viewer request.
type PageView struct {
	Document  DocumentSummary
	Page      int
	PageCount int
	Clause    string
	Scale     float64
	Text      string
}
