package domain

type Collection struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Handle      string    `json:"handle"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Description string    `json:"description,omitempty"`
	FilterTag   string    `json:"filterTag,omitempty"`
	SizeType    SizeType  `json:"sizeType,omitempty"`
	Products    []Product `json:"products,omitempty"`
}
