package services

import "math"

const MaxPageSize = 100

// Page 1 开始的页码与每页条数
type Page struct {
	Number int
	Size   int
}

// NewPage 修正非法值：页码至少为 1，条数落在 [1, MaxPageSize]
func NewPage(number, size, defaultSize int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = defaultSize
	}
	if size < 1 {
		size = 1
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	// 保证 Number*Size 不溢出
	if maxNumber := math.MaxInt / size; number > maxNumber {
		number = maxNumber
	}
	return Page{Number: number, Size: size}
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// HasNext 是否还有下一页
func (p Page) HasNext(total int64) bool {
	return int64(p.Number*p.Size) < total
}
