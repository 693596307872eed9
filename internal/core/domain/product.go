package domain

type ProductID string

type Collection string

const (
	CollectionFeatured Collection = "featured"
	CollectionShowroom Collection = "showroom"
)

func (c Collection) Valid() bool {
	return c == CollectionFeatured || c == CollectionShowroom
}

type Specification struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type Product struct {
	ID             ProductID
	Name           string
	Description    string
	Tag            string
	Collection     Collection
	Position       int
	Image          string
	Images         []string
	Price          Money
	Specifications []Specification
}

// ProductDescriptor is what a catalog surface hands to the cart.
type ProductDescriptor struct {
	ID          ProductID
	Name        string
	Description string
	Image       string
	Price       Money
}

func (p Product) Descriptor() ProductDescriptor {
	image := p.Image
	if image == "" && len(p.Images) > 0 {
		image = p.Images[0]
	}
	return ProductDescriptor{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Image:       image,
		Price:       p.Price,
	}
}
