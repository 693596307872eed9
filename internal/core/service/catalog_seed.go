package service

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/rl1809/clock-shop/internal/core/domain"
)

// CatalogEntry is a catalog product as authored, with its display price.
type CatalogEntry struct {
	ID             domain.ProductID
	Name           string
	Description    string
	Tag            string
	Collection     domain.Collection
	Price          string
	Image          string
	Images         []string
	Specifications []domain.Specification
}

// LoadCatalog parses the display prices of entries. With strict set a price
// that cannot be parsed is an error; otherwise the product is priced at zero
// and a warning is logged.
func LoadCatalog(entries []CatalogEntry, currency string, strict bool, logger *zap.Logger) ([]domain.Product, error) {
	positions := make(map[domain.Collection]int)
	products := make([]domain.Product, 0, len(entries))

	for _, e := range entries {
		price, err := domain.ParsePrice(e.Price, currency)
		if err != nil {
			if strict {
				return nil, fmt.Errorf("catalog product %s: %w", e.ID, err)
			}
			logger.Warn("unparseable catalog price, using zero",
				zap.String("product_id", string(e.ID)),
				zap.String("price", e.Price),
			)
			price = domain.Zero(currency)
		}

		positions[e.Collection]++
		products = append(products, domain.Product{
			ID:             e.ID,
			Name:           e.Name,
			Description:    e.Description,
			Tag:            e.Tag,
			Collection:     e.Collection,
			Position:       positions[e.Collection],
			Image:          e.Image,
			Images:         e.Images,
			Price:          price,
			Specifications: e.Specifications,
		})
	}

	return products, nil
}

func unsplash(photo string, size int) string {
	return fmt.Sprintf("https://images.unsplash.com/photo-%s?w=%d&h=%d&fit=crop", photo, size, size)
}

const (
	photoGrandfather = "1563861826100-9cb868fdbe1c"
	photoWall        = "1495364141860-b0d03eccd065"
	photoMantle      = "1609081219090-a6d81d3085bf"
	photoCuckoo      = "1611127404924-cd62211fcc60"
	photoSmart       = "1586953208448-b95a79798f07"
	photoArtDeco     = "1594736797933-d0b3b3e14c20"
)

// SeedCatalog is the shop's launch catalog.
func SeedCatalog() []CatalogEntry {
	return []CatalogEntry{
		{
			ID: "vintage-grandfather-clock", Name: "Vintage Grandfather Clock", Price: "$2,499",
			Tag: "Classic", Collection: domain.CollectionFeatured,
			Description: "Handcrafted mahogany with brass pendulum",
			Image:       unsplash(photoGrandfather, 400),
		},
		{
			ID: "modern-wall-clock", Name: "Modern Wall Clock", Price: "$299",
			Tag: "Contemporary", Collection: domain.CollectionFeatured,
			Description: "Minimalist design with silent movement",
			Image:       unsplash(photoWall, 400),
		},
		{
			ID: "antique-mantle-clock", Name: "Antique Mantle Clock", Price: "$899",
			Tag: "Antique", Collection: domain.CollectionFeatured,
			Description: "Restored Victorian era masterpiece",
			Image:       unsplash(photoMantle, 400),
		},
		{
			ID: "swiss-cuckoo-clock", Name: "Swiss Cuckoo Clock", Price: "$1,299",
			Tag: "Traditional", Collection: domain.CollectionFeatured,
			Description: "Authentic Black Forest craftsmanship",
			Image:       unsplash(photoCuckoo, 400),
		},
		{
			ID: "digital-smart-clock", Name: "Digital Smart Clock", Price: "$199",
			Tag: "Smart", Collection: domain.CollectionFeatured,
			Description: "Connected features with weather display",
			Image:       unsplash(photoSmart, 400),
		},
		{
			ID: "art-deco-table-clock", Name: "Art Deco Table Clock", Price: "$599",
			Tag: "Designer", Collection: domain.CollectionFeatured,
			Description: "Geometric patterns in brass and marble",
			Image:       unsplash(photoArtDeco, 400),
		},
		{
			ID: "royal-grandfather-clock", Name: "Royal Grandfather Clock", Price: "$3,299",
			Tag: "Premium", Collection: domain.CollectionShowroom,
			Description: "An exquisite handcrafted grandfather clock with intricate woodwork and premium brass fittings.",
			Images: []string{
				unsplash(photoGrandfather, 600),
				unsplash(photoArtDeco, 600),
				unsplash(photoMantle, 600),
				unsplash(photoCuckoo, 600),
			},
			Specifications: []domain.Specification{
				{Label: "Height", Value: "84 inches"},
				{Label: "Material", Value: "Mahogany Wood"},
				{Label: "Movement", Value: "Mechanical"},
				{Label: "Chimes", Value: "Westminster"},
				{Label: "Warranty", Value: "5 Years"},
			},
		},
		{
			ID: "modern-minimalist-wall-clock", Name: "Modern Minimalist Wall Clock", Price: "$449",
			Tag: "Contemporary", Collection: domain.CollectionShowroom,
			Description: "A sleek and modern wall clock perfect for contemporary spaces with silent quartz movement.",
			Images: []string{
				unsplash(photoWall, 600),
				unsplash(photoSmart, 600),
				unsplash(photoGrandfather, 600),
				unsplash(photoArtDeco, 600),
			},
			Specifications: []domain.Specification{
				{Label: "Diameter", Value: "24 inches"},
				{Label: "Material", Value: "Brushed Steel"},
				{Label: "Movement", Value: "Silent Quartz"},
				{Label: "Power", Value: "Battery"},
				{Label: "Warranty", Value: "2 Years"},
			},
		},
		{
			ID: "vintage-cuckoo-clock", Name: "Vintage Cuckoo Clock", Price: "$1,899",
			Tag: "Traditional", Collection: domain.CollectionShowroom,
			Description: "Authentic Black Forest cuckoo clock with traditional wooden craftsmanship and mechanical movement.",
			Images: []string{
				unsplash(photoCuckoo, 600),
				unsplash(photoMantle, 600),
				unsplash(photoGrandfather, 600),
				unsplash(photoWall, 600),
			},
			Specifications: []domain.Specification{
				{Label: "Height", Value: "16 inches"},
				{Label: "Material", Value: "Black Forest Wood"},
				{Label: "Movement", Value: "Mechanical Cuckoo"},
				{Label: "Origin", Value: "Germany"},
				{Label: "Warranty", Value: "3 Years"},
			},
		},
	}
}
