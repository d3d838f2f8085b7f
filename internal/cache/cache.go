package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"supply_order_back_end/internal/models"
	"supply_order_back_end/internal/store"
)

const (
	ProductsKey  = "products:all"
	EmployeesKey = "employees:all"

	CatalogCacheTTL = 10 * time.Minute
)

// Catalog met en cache Redis la liste des produits et du personnel.
// Il se substitue aux stores sous-jacents ; toute écriture produit invalide le cache.
type Catalog struct {
	products  store.ProductStore
	employees store.EmployeeStore
	client    *redis.Client
	ttl       time.Duration
}

func NewCatalog(client *redis.Client, products store.ProductStore, employees store.EmployeeStore, ttl time.Duration) *Catalog {
	if ttl <= 0 {
		ttl = CatalogCacheTTL
	}
	return &Catalog{products: products, employees: employees, client: client, ttl: ttl}
}

func (c *Catalog) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if c.get(ctx, ProductsKey, &products) {
		return products, nil
	}
	products, err := c.products.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, ProductsKey, products)
	return products, nil
}

func (c *Catalog) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	products, err := c.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	// Le cache peut précéder une création récente
	return c.products.GetProduct(ctx, id)
}

func (c *Catalog) CreateProduct(ctx context.Context, p models.Product) error {
	if err := c.products.CreateProduct(ctx, p); err != nil {
		return err
	}
	c.InvalidateProducts(ctx)
	return nil
}

func (c *Catalog) UpdateProduct(ctx context.Context, p models.Product) error {
	if err := c.products.UpdateProduct(ctx, p); err != nil {
		return err
	}
	c.InvalidateProducts(ctx)
	return nil
}

func (c *Catalog) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	var employees []models.Employee
	if c.get(ctx, EmployeesKey, &employees) {
		return employees, nil
	}
	employees, err := c.employees.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, EmployeesKey, employees)
	return employees, nil
}

// InvalidateProducts supprime la liste produits du cache
func (c *Catalog) InvalidateProducts(ctx context.Context) {
	if err := c.client.Del(ctx, ProductsKey).Err(); err != nil {
		log.Printf("⚠️ Invalidation cache produits impossible: %v", err)
	}
}

func (c *Catalog) get(ctx context.Context, key string, dst interface{}) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("⚠️ Lecture cache %s impossible: %v", key, err)
		}
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

func (c *Catalog) set(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Printf("⚠️ Écriture cache %s impossible: %v", key, err)
	}
}
