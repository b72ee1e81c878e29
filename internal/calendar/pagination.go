package calendar

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// PageRequest — параметры страницы из запроса, Page нумеруется с 1.
type PageRequest struct {
	Page     int
	PageSize int
}

// Normalize подставляет дефолты и ограничивает размер страницы.
func (r PageRequest) Normalize() PageRequest {
	if r.Page <= 0 {
		r.Page = 1
	}
	if r.PageSize <= 0 {
		r.PageSize = defaultPageSize
	}
	if r.PageSize > maxPageSize {
		r.PageSize = maxPageSize
	}
	return r
}

// Offset для LIMIT/OFFSET запроса; r должен быть нормализован.
func (r PageRequest) Offset() int {
	return (r.Page - 1) * r.PageSize
}

// Page описывает одну страницу элементов.
type Page[T any] struct {
	Items    []T // элементы на текущей странице
	Page     int // номер страницы (с 1)
	PageSize int // количество элементов на странице
	HasNext  bool
	HasPrev  bool
	Total    int64 // общее количество элементов
}

// NewPage собирает метаданные страницы по уже выбранным из хранилища элементам.
func NewPage[T any](items []T, req PageRequest, total int64) Page[T] {
	req = req.Normalize()
	if items == nil {
		items = []T{}
	}
	end := int64(req.Offset() + len(items))
	return Page[T]{
		Items:    items,
		Page:     req.Page,
		PageSize: req.PageSize,
		HasPrev:  req.Page > 1,
		HasNext:  end < total,
		Total:    total,
	}
}
