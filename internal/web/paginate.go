package web

// eventsPerPage is the fixed page size for event listings.
const eventsPerPage = 25

// Page describes one page of a listing. Out-of-range page numbers are
// clamped into the valid range rather than rejected.
type Page struct {
	Number     int
	Size       int
	TotalItems int
	TotalPages int
}

// NewPage clamps number into [1, ceil(totalItems/size)]. An empty listing
// still has one (empty) page.
func NewPage(number, size, totalItems int) *Page {
	totalPages := (totalItems + size - 1) / size
	if totalPages < 1 {
		totalPages = 1
	}
	if number < 1 {
		number = 1
	}
	if number > totalPages {
		number = totalPages
	}
	return &Page{Number: number, Size: size, TotalItems: totalItems, TotalPages: totalPages}
}

func (p *Page) Offset() int   { return (p.Number - 1) * p.Size }
func (p *Page) HasPrev() bool { return p.Number > 1 }
func (p *Page) HasNext() bool { return p.Number < p.TotalPages }
func (p *Page) Prev() int     { return p.Number - 1 }
func (p *Page) Next() int     { return p.Number + 1 }
