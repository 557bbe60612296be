package services

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"campusmarket/internal/models"
)

// CatalogService owns the marketplace listings: products, offered services,
// restaurants and their menus.
type CatalogService struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewCatalogService(db *sql.DB, logger zerolog.Logger) *CatalogService {
	return &CatalogService{
		db:     db,
		logger: logger,
	}
}

// ---- products ----

func (s *CatalogService) CreateProduct(seller *models.User, req *models.ProductCreateRequest) (*models.Product, error) {
	if req.Title == "" || !req.Price.IsPositive() {
		return nil, fmt.Errorf("%w: title and a positive price are required", ErrInvalidRequest)
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}
	if req.Condition == "" {
		req.Condition = "new"
	}

	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO products (id, seller_id, seller_name, title, description, price, category, subcategory, item_condition, location, quantity)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, seller.ID, seller.FullName, req.Title, req.Description, req.Price,
		req.Category, req.Subcategory, req.Condition, req.Location, req.Quantity,
	)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error creating product")
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info().Str("product_id", id).Str("seller_id", seller.ID).Msg("Product created")
	return s.GetProduct(id)
}

func (s *CatalogService) GetProduct(productID string) (*models.Product, error) {
	row := s.db.QueryRow(
		`SELECT id, seller_id, seller_name, title, description, price, category, subcategory, item_condition, location, quantity, is_available, views, created_at, updated_at
		 FROM products WHERE id = ?`,
		productID,
	)
	return scanProduct(row)
}

func scanProduct(row *sql.Row) (*models.Product, error) {
	var p models.Product
	err := row.Scan(
		&p.ID, &p.SellerID, &p.SellerName, &p.Title, &p.Description, &p.Price,
		&p.Category, &p.Subcategory, &p.Condition, &p.Location, &p.Quantity,
		&p.IsAvailable, &p.Views, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: product", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &p, nil
}

// ViewProduct fetches a product and bumps its view counter.
func (s *CatalogService) ViewProduct(productID string) (*models.Product, error) {
	p, err := s.GetProduct(productID)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.Exec("UPDATE products SET views = views + 1 WHERE id = ?", productID); err != nil {
		s.logger.Warn().Err(err).Str("product_id", productID).Msg("Failed to increment product views")
	}
	return p, nil
}

func (s *CatalogService) ListProducts(filter models.ProductFilter) ([]*models.Product, error) {
	query := `SELECT id, seller_id, seller_name, title, description, price, category, subcategory, item_condition, location, quantity, is_available, views, created_at, updated_at
		 FROM products WHERE is_available = TRUE`
	var args []interface{}

	if filter.Category != "" {
		query += " AND category = ?"
		args = append(args, filter.Category)
	}
	if filter.Search != "" {
		query += " AND (title LIKE ? OR description LIKE ?)"
		like := "%" + filter.Search + "%"
		args = append(args, like, like)
	}
	if filter.MinPrice != nil {
		query += " AND price >= ?"
		args = append(args, *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query += " AND price <= ?"
		args = append(args, *filter.MaxPrice)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error listing products")
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		var p models.Product
		err := rows.Scan(
			&p.ID, &p.SellerID, &p.SellerName, &p.Title, &p.Description, &p.Price,
			&p.Category, &p.Subcategory, &p.Condition, &p.Location, &p.Quantity,
			&p.IsAvailable, &p.Views, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning product: %w", err)
		}
		products = append(products, &p)
	}

	return products, rows.Err()
}

func (s *CatalogService) ListProductsBySeller(sellerID string) ([]*models.Product, error) {
	rows, err := s.db.Query(
		`SELECT id, seller_id, seller_name, title, description, price, category, subcategory, item_condition, location, quantity, is_available, views, created_at, updated_at
		 FROM products WHERE seller_id = ? ORDER BY created_at DESC`,
		sellerID,
	)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		var p models.Product
		err := rows.Scan(
			&p.ID, &p.SellerID, &p.SellerName, &p.Title, &p.Description, &p.Price,
			&p.Category, &p.Subcategory, &p.Condition, &p.Location, &p.Quantity,
			&p.IsAvailable, &p.Views, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning product: %w", err)
		}
		products = append(products, &p)
	}

	return products, rows.Err()
}

func (s *CatalogService) UpdateProduct(productID, sellerID string, req *models.ProductCreateRequest) error {
	res, err := s.db.Exec(
		`UPDATE products SET title = ?, description = ?, price = ?, category = ?, subcategory = ?, item_condition = ?, location = ?, quantity = ?, is_available = ?
		 WHERE id = ? AND seller_id = ?`,
		req.Title, req.Description, req.Price, req.Category, req.Subcategory,
		req.Condition, req.Location, req.Quantity, req.Quantity > 0,
		productID, sellerID,
	)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", productID).Msg("Error updating product")
		return fmt.Errorf("failed to update product: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("%w: product", ErrNotFound)
	}
	return nil
}

func (s *CatalogService) DeleteProduct(productID, sellerID string) error {
	res, err := s.db.Exec("DELETE FROM products WHERE id = ? AND seller_id = ?", productID, sellerID)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("%w: product", ErrNotFound)
	}
	s.logger.Info().Str("product_id", productID).Msg("Product deleted")
	return nil
}

// DecrementStock reduces a product's quantity after a sale and flips
// availability off when it hits zero.
func (s *CatalogService) DecrementStock(productID string, quantity int) error {
	// MySQL applies SET clauses left to right, so availability is computed
	// before the quantity assignment overwrites the old value.
	res, err := s.db.Exec(
		`UPDATE products SET is_available = quantity - ? > 0, quantity = quantity - ?
		 WHERE id = ? AND quantity >= ?`,
		quantity, quantity, productID, quantity,
	)
	if err != nil {
		return fmt.Errorf("failed to update stock: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("%w: insufficient stock", ErrInvalidRequest)
	}
	return nil
}

// ---- offered services ----

func (s *CatalogService) CreateService(provider *models.User, req *models.ServiceCreateRequest) (*models.ServiceListing, error) {
	if req.Title == "" || !req.Price.IsPositive() {
		return nil, fmt.Errorf("%w: title and a positive price are required", ErrInvalidRequest)
	}

	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO services (id, provider_id, provider_name, title, description, price, service_type, duration, location, availability)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, provider.ID, provider.FullName, req.Title, req.Description, req.Price,
		req.ServiceType, req.Duration, req.Location, req.Availability,
	)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error creating service")
		return nil, fmt.Errorf("failed to create service: %w", err)
	}

	s.logger.Info().Str("service_id", id).Str("provider_id", provider.ID).Msg("Service created")
	return s.GetService(id)
}

func (s *CatalogService) GetService(serviceID string) (*models.ServiceListing, error) {
	var sv models.ServiceListing
	err := s.db.QueryRow(
		`SELECT id, provider_id, provider_name, title, description, price, service_type, duration, location, availability, rating, total_reviews, is_available, created_at
		 FROM services WHERE id = ?`,
		serviceID,
	).Scan(
		&sv.ID, &sv.ProviderID, &sv.ProviderName, &sv.Title, &sv.Description, &sv.Price,
		&sv.ServiceType, &sv.Duration, &sv.Location, &sv.Availability,
		&sv.Rating, &sv.TotalReviews, &sv.IsAvailable, &sv.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: service", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &sv, nil
}

func (s *CatalogService) ListServices(serviceType, search string, limit int) ([]*models.ServiceListing, error) {
	query := `SELECT id, provider_id, provider_name, title, description, price, service_type, duration, location, availability, rating, total_reviews, is_available, created_at
		 FROM services WHERE is_available = TRUE`
	var args []interface{}

	if serviceType != "" {
		query += " AND service_type = ?"
		args = append(args, serviceType)
	}
	if search != "" {
		query += " AND (title LIKE ? OR description LIKE ?)"
		like := "%" + search + "%"
		args = append(args, like, like)
	}

	if limit <= 0 {
		limit = 50
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	return scanServices(rows)
}

func (s *CatalogService) ListServicesByProvider(providerID string) ([]*models.ServiceListing, error) {
	rows, err := s.db.Query(
		`SELECT id, provider_id, provider_name, title, description, price, service_type, duration, location, availability, rating, total_reviews, is_available, created_at
		 FROM services WHERE provider_id = ? ORDER BY created_at DESC`,
		providerID,
	)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	return scanServices(rows)
}

func scanServices(rows *sql.Rows) ([]*models.ServiceListing, error) {
	var services []*models.ServiceListing
	for rows.Next() {
		var sv models.ServiceListing
		err := rows.Scan(
			&sv.ID, &sv.ProviderID, &sv.ProviderName, &sv.Title, &sv.Description, &sv.Price,
			&sv.ServiceType, &sv.Duration, &sv.Location, &sv.Availability,
			&sv.Rating, &sv.TotalReviews, &sv.IsAvailable, &sv.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning service: %w", err)
		}
		services = append(services, &sv)
	}
	return services, rows.Err()
}

// ---- restaurants and menus ----

func (s *CatalogService) CreateRestaurant(owner *models.User, req *models.RestaurantCreateRequest) (*models.Restaurant, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidRequest)
	}

	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO restaurants (id, owner_id, name, description, cuisine_type, address, phone, opening_hours)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, owner.ID, req.Name, req.Description, req.CuisineType, req.Address, req.Phone, req.OpeningHours,
	)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error creating restaurant")
		return nil, fmt.Errorf("failed to create restaurant: %w", err)
	}

	s.logger.Info().Str("restaurant_id", id).Str("owner_id", owner.ID).Msg("Restaurant created")
	return s.GetRestaurant(id)
}

func (s *CatalogService) GetRestaurant(restaurantID string) (*models.Restaurant, error) {
	var r models.Restaurant
	err := s.db.QueryRow(
		`SELECT id, owner_id, name, description, cuisine_type, address, phone, opening_hours, rating, total_reviews, is_open, is_verified, created_at
		 FROM restaurants WHERE id = ?`,
		restaurantID,
	).Scan(
		&r.ID, &r.OwnerID, &r.Name, &r.Description, &r.CuisineType, &r.Address, &r.Phone,
		&r.OpeningHours, &r.Rating, &r.TotalReviews, &r.IsOpen, &r.IsVerified, &r.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: restaurant", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &r, nil
}

func (s *CatalogService) ListRestaurants(cuisine, search string) ([]*models.Restaurant, error) {
	query := `SELECT id, owner_id, name, description, cuisine_type, address, phone, opening_hours, rating, total_reviews, is_open, is_verified, created_at
		 FROM restaurants WHERE is_open = TRUE`
	var args []interface{}

	if cuisine != "" {
		query += " AND cuisine_type = ?"
		args = append(args, cuisine)
	}
	if search != "" {
		query += " AND (name LIKE ? OR description LIKE ?)"
		like := "%" + search + "%"
		args = append(args, like, like)
	}
	query += " ORDER BY rating DESC LIMIT 50"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	var restaurants []*models.Restaurant
	for rows.Next() {
		var r models.Restaurant
		err := rows.Scan(
			&r.ID, &r.OwnerID, &r.Name, &r.Description, &r.CuisineType, &r.Address, &r.Phone,
			&r.OpeningHours, &r.Rating, &r.TotalReviews, &r.IsOpen, &r.IsVerified, &r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning restaurant: %w", err)
		}
		restaurants = append(restaurants, &r)
	}

	return restaurants, rows.Err()
}

func (s *CatalogService) CreateMenuItem(ownerID string, req *models.MenuItemCreateRequest) (*models.MenuItem, error) {
	if req.Name == "" || !req.Price.IsPositive() {
		return nil, fmt.Errorf("%w: name and a positive price are required", ErrInvalidRequest)
	}

	restaurant, err := s.GetRestaurant(req.RestaurantID)
	if err != nil {
		return nil, err
	}
	if restaurant.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: only the restaurant owner can add menu items", ErrUnauthorized)
	}

	id := uuid.NewString()
	_, err = s.db.Exec(
		`INSERT INTO menu_items (id, restaurant_id, name, description, price, category, is_available)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, req.RestaurantID, req.Name, req.Description, req.Price, req.Category, req.IsAvailable,
	)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error creating menu item")
		return nil, fmt.Errorf("failed to create menu item: %w", err)
	}

	return s.GetMenuItem(id)
}

func (s *CatalogService) GetMenuItem(itemID string) (*models.MenuItem, error) {
	var m models.MenuItem
	err := s.db.QueryRow(
		`SELECT id, restaurant_id, name, description, price, category, is_available, created_at
		 FROM menu_items WHERE id = ?`,
		itemID,
	).Scan(&m.ID, &m.RestaurantID, &m.Name, &m.Description, &m.Price, &m.Category, &m.IsAvailable, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: menu item", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &m, nil
}

func (s *CatalogService) ListMenu(restaurantID string) ([]*models.MenuItem, error) {
	rows, err := s.db.Query(
		`SELECT id, restaurant_id, name, description, price, category, is_available, created_at
		 FROM menu_items WHERE restaurant_id = ? AND is_available = TRUE`,
		restaurantID,
	)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	var items []*models.MenuItem
	for rows.Next() {
		var m models.MenuItem
		err := rows.Scan(&m.ID, &m.RestaurantID, &m.Name, &m.Description, &m.Price, &m.Category, &m.IsAvailable, &m.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning menu item: %w", err)
		}
		items = append(items, &m)
	}

	return items, rows.Err()
}

// UpdateRating recomputes the average rating for a review target.
func (s *CatalogService) UpdateRating(targetID, targetType string, rating float64, total int) error {
	var table string
	switch strings.ToLower(targetType) {
	case "product":
		// Products carry no rating columns; reviews are listed directly.
		return nil
	case "service":
		table = "services"
	case "restaurant":
		table = "restaurants"
	default:
		return fmt.Errorf("%w: unknown review target type %s", ErrInvalidRequest, targetType)
	}

	query := fmt.Sprintf("UPDATE %s SET rating = ?, total_reviews = ? WHERE id = ?", table)
	_, err := s.db.Exec(query, rating, total, targetID)
	if err != nil {
		return fmt.Errorf("failed to update rating: %w", err)
	}
	return nil
}
