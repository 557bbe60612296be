package services

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"campusmarket/internal/currency"
	"campusmarket/internal/models"
)

// DeliveryFee is the flat fee added to every food order, in the home fiat.
var DeliveryFee = decimal.NewFromInt(200)

// OrderService owns product orders, service bookings and food orders. All
// three go through the same purchase sequence on creation and the same
// settle-once transition on fulfillment.
type OrderService struct {
	db       *sql.DB
	status   statusStore
	purchase *PurchaseService
	catalog  *CatalogService
	users    *UserService
	rates    *currency.RateTable
	logger   zerolog.Logger
}

func NewOrderService(db *sql.DB, purchase *PurchaseService, catalog *CatalogService, users *UserService, rates *currency.RateTable, logger zerolog.Logger) *OrderService {
	return &OrderService{
		db:       db,
		status:   sqlStatusStore{db: db},
		purchase: purchase,
		catalog:  catalog,
		users:    users,
		rates:    rates,
		logger:   logger,
	}
}

// statusStore applies a conditional status transition and reports whether
// the row actually changed. Like WalletStore.ApplyDelta, the condition must
// hold atomically in the store so a re-sent terminal status is a no-op even
// across processes.
type statusStore interface {
	Transition(table, recordID string, to models.OrderStatus) (bool, error)
}

type sqlStatusStore struct {
	db *sql.DB
}

func (s sqlStatusStore) Transition(table, recordID string, to models.OrderStatus) (bool, error) {
	query := fmt.Sprintf("UPDATE %s SET status = ? WHERE id = ? AND status <> ?", table)
	res, err := s.db.Exec(query, string(to), recordID, string(to))
	if err != nil {
		return false, fmt.Errorf("failed to update status: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read update result: %w", err)
	}
	return rows == 1, nil
}

// settleOnTransition moves a record to newStatus and runs settle only when
// newStatus is the terminal one and the record was not already there. The
// transition gating the settlement is what keeps a repeated terminal update
// from crediting the seller twice.
func (s *OrderService) settleOnTransition(table, recordID string, newStatus, terminal models.OrderStatus, settle func() error) error {
	transitioned, err := s.status.Transition(table, recordID, newStatus)
	if err != nil {
		return err
	}
	if newStatus == terminal && transitioned {
		return settle()
	}
	return nil
}

// ---- product orders ----

func (s *OrderService) CreateOrder(buyerID string, req *models.OrderCreateRequest) (*models.Order, error) {
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	product, err := s.catalog.GetProduct(req.ProductID)
	if err != nil {
		return nil, err
	}
	if product.Quantity < req.Quantity {
		return nil, fmt.Errorf("%w: insufficient stock", ErrInvalidRequest)
	}

	buyer, err := s.users.GetUserByID(buyerID)
	if err != nil {
		return nil, err
	}

	total := product.Price.Mul(decimal.NewFromInt(int64(req.Quantity)))
	quote, _, err := s.purchase.Execute(buyerID, PurchaseTarget{
		Kind:          models.PurchaseProduct,
		ID:            product.ID,
		SellerID:      product.SellerID,
		Title:         product.Title,
		Amount:        total,
		PriceCurrency: currency.FIAT,
		Available:     product.IsAvailable,
	}, req.PaymentCurrency)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		ID:              uuid.NewString(),
		BuyerID:         buyerID,
		BuyerName:       buyer.FullName,
		SellerID:        product.SellerID,
		SellerName:      product.SellerName,
		ProductID:       product.ID,
		ProductTitle:    product.Title,
		Quantity:        req.Quantity,
		UnitPrice:       product.Price,
		TotalAmount:     quote.OriginalAmount,
		DiscountApplied: quote.DiscountAmount,
		FinalAmount:     quote.FinalAmount,
		PaymentCurrency: quote.Currency,
		DeliveryAddress: req.DeliveryAddress,
		Notes:           req.Notes,
		Status:          models.StatusPending,
	}

	_, err = s.db.Exec(
		`INSERT INTO orders (id, buyer_id, buyer_name, seller_id, seller_name, product_id, product_title, quantity, unit_price, total_amount, discount_applied, final_amount, payment_currency, delivery_address, notes, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.BuyerID, order.BuyerName, order.SellerID, order.SellerName,
		order.ProductID, order.ProductTitle, order.Quantity, order.UnitPrice,
		order.TotalAmount, order.DiscountApplied, order.FinalAmount,
		string(order.PaymentCurrency), order.DeliveryAddress, order.Notes, string(order.Status),
	)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error creating order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err := s.catalog.DecrementStock(product.ID, req.Quantity); err != nil {
		s.logger.Warn().Err(err).Str("product_id", product.ID).Msg("Failed to decrement stock after order")
	}

	s.logger.Info().Str("order_id", order.ID).Str("buyer_id", buyerID).Msg("Order created")
	return s.GetOrder(order.ID)
}

func (s *OrderService) GetOrder(orderID string) (*models.Order, error) {
	var o models.Order
	var payCur, status string

	err := s.db.QueryRow(
		`SELECT id, buyer_id, buyer_name, seller_id, seller_name, product_id, product_title, quantity, unit_price, total_amount, discount_applied, final_amount, payment_currency, delivery_address, notes, status, created_at, updated_at
		 FROM orders WHERE id = ?`,
		orderID,
	).Scan(
		&o.ID, &o.BuyerID, &o.BuyerName, &o.SellerID, &o.SellerName,
		&o.ProductID, &o.ProductTitle, &o.Quantity, &o.UnitPrice,
		&o.TotalAmount, &o.DiscountApplied, &o.FinalAmount,
		&payCur, &o.DeliveryAddress, &o.Notes, &status, &o.CreatedAt, &o.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: order", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	o.PaymentCurrency = currency.Code(payCur)
	o.Status = models.OrderStatus(status)
	return &o, nil
}

func (s *OrderService) ListOrdersByBuyer(buyerID string) ([]*models.Order, error) {
	return s.listOrders("buyer_id", buyerID)
}

func (s *OrderService) ListOrdersBySeller(sellerID string) ([]*models.Order, error) {
	return s.listOrders("seller_id", sellerID)
}

func (s *OrderService) listOrders(column, id string) ([]*models.Order, error) {
	query := fmt.Sprintf(
		`SELECT id, buyer_id, buyer_name, seller_id, seller_name, product_id, product_title, quantity, unit_price, total_amount, discount_applied, final_amount, payment_currency, delivery_address, notes, status, created_at, updated_at
		 FROM orders WHERE %s = ? ORDER BY created_at DESC LIMIT 100`, column)

	rows, err := s.db.Query(query, id)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		var o models.Order
		var payCur, status string
		err := rows.Scan(
			&o.ID, &o.BuyerID, &o.BuyerName, &o.SellerID, &o.SellerName,
			&o.ProductID, &o.ProductTitle, &o.Quantity, &o.UnitPrice,
			&o.TotalAmount, &o.DiscountApplied, &o.FinalAmount,
			&payCur, &o.DeliveryAddress, &o.Notes, &status, &o.CreatedAt, &o.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning order: %w", err)
		}
		o.PaymentCurrency = currency.Code(payCur)
		o.Status = models.OrderStatus(status)
		orders = append(orders, &o)
	}

	return orders, rows.Err()
}

var validOrderStatuses = map[models.OrderStatus]bool{
	models.StatusConfirmed: true,
	models.StatusInTransit: true,
	models.StatusDelivered: true,
	models.StatusCancelled: true,
}

// UpdateOrderStatus moves an order through its lifecycle. The transition
// into delivered settles the purchase: the seller is credited and the buyer
// earns loyalty points. The conditional update makes the settlement fire at
// most once no matter how many times the same transition is resent.
func (s *OrderService) UpdateOrderStatus(orderID, callerID string, newStatus models.OrderStatus) (*models.Order, error) {
	if !validOrderStatuses[newStatus] {
		return nil, fmt.Errorf("%w: invalid status %s", ErrInvalidRequest, newStatus)
	}

	order, err := s.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.SellerID != callerID && order.BuyerID != callerID {
		return nil, fmt.Errorf("%w: caller is neither buyer nor seller", ErrUnauthorized)
	}

	err = s.settleOnTransition("orders", orderID, newStatus, models.StatusDelivered, func() error {
		return s.purchase.Settle(order.SellerID, order.BuyerID, order.FinalAmount, order.FinalAmount, order.PaymentCurrency, models.PurchaseProduct, order.ProductTitle)
	})
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID).Msg("Order status update failed")
		return nil, err
	}

	return s.GetOrder(orderID)
}

// ---- service bookings ----

func (s *OrderService) CreateBooking(clientID string, req *models.BookingCreateRequest) (*models.ServiceBooking, error) {
	if req.ScheduledDate == "" {
		return nil, fmt.Errorf("%w: scheduled_date is required", ErrInvalidRequest)
	}

	service, err := s.catalog.GetService(req.ServiceID)
	if err != nil {
		return nil, err
	}

	client, err := s.users.GetUserByID(clientID)
	if err != nil {
		return nil, err
	}

	quote, _, err := s.purchase.Execute(clientID, PurchaseTarget{
		Kind:          models.PurchaseService,
		ID:            service.ID,
		SellerID:      service.ProviderID,
		Title:         service.Title,
		Amount:        service.Price,
		PriceCurrency: currency.FIAT,
		Available:     service.IsAvailable,
	}, req.PaymentCurrency)
	if err != nil {
		return nil, err
	}

	booking := &models.ServiceBooking{
		ID:              uuid.NewString(),
		ServiceID:       service.ID,
		ServiceTitle:    service.Title,
		ClientID:        clientID,
		ClientName:      client.FullName,
		ProviderID:      service.ProviderID,
		ProviderName:    service.ProviderName,
		ScheduledDate:   req.ScheduledDate,
		ScheduledTime:   req.ScheduledTime,
		Notes:           req.Notes,
		Location:        req.Location,
		Amount:          quote.OriginalAmount,
		DiscountApplied: quote.DiscountAmount,
		FinalAmount:     quote.FinalAmount,
		PaymentCurrency: quote.Currency,
		Status:          models.StatusPending,
	}

	_, err = s.db.Exec(
		`INSERT INTO service_bookings (id, service_id, service_title, client_id, client_name, provider_id, provider_name, scheduled_date, scheduled_time, notes, location, amount, discount_applied, final_amount, payment_currency, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		booking.ID, booking.ServiceID, booking.ServiceTitle, booking.ClientID, booking.ClientName,
		booking.ProviderID, booking.ProviderName, booking.ScheduledDate, booking.ScheduledTime,
		booking.Notes, booking.Location, booking.Amount, booking.DiscountApplied,
		booking.FinalAmount, string(booking.PaymentCurrency), string(booking.Status),
	)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error creating booking")
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.logger.Info().Str("booking_id", booking.ID).Str("client_id", clientID).Msg("Service booked")
	return s.GetBooking(booking.ID)
}

func (s *OrderService) GetBooking(bookingID string) (*models.ServiceBooking, error) {
	var b models.ServiceBooking
	var payCur, status string

	err := s.db.QueryRow(
		`SELECT id, service_id, service_title, client_id, client_name, provider_id, provider_name, scheduled_date, scheduled_time, notes, location, amount, discount_applied, final_amount, payment_currency, status, created_at
		 FROM service_bookings WHERE id = ?`,
		bookingID,
	).Scan(
		&b.ID, &b.ServiceID, &b.ServiceTitle, &b.ClientID, &b.ClientName,
		&b.ProviderID, &b.ProviderName, &b.ScheduledDate, &b.ScheduledTime,
		&b.Notes, &b.Location, &b.Amount, &b.DiscountApplied,
		&b.FinalAmount, &payCur, &status, &b.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: booking", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	b.PaymentCurrency = currency.Code(payCur)
	b.Status = models.OrderStatus(status)
	return &b, nil
}

func (s *OrderService) ListBookings(userID string) ([]*models.ServiceBooking, error) {
	rows, err := s.db.Query(
		`SELECT id, service_id, service_title, client_id, client_name, provider_id, provider_name, scheduled_date, scheduled_time, notes, location, amount, discount_applied, final_amount, payment_currency, status, created_at
		 FROM service_bookings WHERE client_id = ? OR provider_id = ? ORDER BY created_at DESC LIMIT 100`,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	var bookings []*models.ServiceBooking
	for rows.Next() {
		var b models.ServiceBooking
		var payCur, status string
		err := rows.Scan(
			&b.ID, &b.ServiceID, &b.ServiceTitle, &b.ClientID, &b.ClientName,
			&b.ProviderID, &b.ProviderName, &b.ScheduledDate, &b.ScheduledTime,
			&b.Notes, &b.Location, &b.Amount, &b.DiscountApplied,
			&b.FinalAmount, &payCur, &status, &b.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning booking: %w", err)
		}
		b.PaymentCurrency = currency.Code(payCur)
		b.Status = models.OrderStatus(status)
		bookings = append(bookings, &b)
	}

	return bookings, rows.Err()
}

var validBookingStatuses = map[models.OrderStatus]bool{
	models.StatusConfirmed:  true,
	models.StatusInProgress: true,
	models.StatusCompleted:  true,
	models.StatusCancelled:  true,
}

// UpdateBookingStatus mirrors UpdateOrderStatus; completed is the terminal
// status that releases payment to the provider.
func (s *OrderService) UpdateBookingStatus(bookingID, callerID string, newStatus models.OrderStatus) (*models.ServiceBooking, error) {
	if !validBookingStatuses[newStatus] {
		return nil, fmt.Errorf("%w: invalid status %s", ErrInvalidRequest, newStatus)
	}

	booking, err := s.GetBooking(bookingID)
	if err != nil {
		return nil, err
	}
	if booking.ProviderID != callerID && booking.ClientID != callerID {
		return nil, fmt.Errorf("%w: caller is neither client nor provider", ErrUnauthorized)
	}

	err = s.settleOnTransition("service_bookings", bookingID, newStatus, models.StatusCompleted, func() error {
		return s.purchase.Settle(booking.ProviderID, booking.ClientID, booking.FinalAmount, booking.FinalAmount, booking.PaymentCurrency, models.PurchaseService, booking.ServiceTitle)
	})
	if err != nil {
		s.logger.Error().Err(err).Str("booking_id", bookingID).Msg("Booking status update failed")
		return nil, err
	}

	return s.GetBooking(bookingID)
}

// ---- food orders ----

func (s *OrderService) CreateFoodOrder(customerID string, req *models.FoodOrderCreateRequest) (*models.FoodOrder, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", ErrInvalidRequest)
	}
	if req.DeliveryAddress == "" {
		return nil, fmt.Errorf("%w: delivery_address is required", ErrInvalidRequest)
	}

	restaurant, err := s.catalog.GetRestaurant(req.RestaurantID)
	if err != nil {
		return nil, err
	}

	customer, err := s.users.GetUserByID(customerID)
	if err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	var items []models.FoodOrderItem
	for _, line := range req.Items {
		if line.Quantity <= 0 {
			continue
		}
		menuItem, err := s.catalog.GetMenuItem(line.MenuItemID)
		if err != nil || menuItem.RestaurantID != restaurant.ID || !menuItem.IsAvailable {
			continue
		}
		lineTotal := menuItem.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		subtotal = subtotal.Add(lineTotal)
		items = append(items, models.FoodOrderItem{
			MenuItemID: menuItem.ID,
			Name:       menuItem.Name,
			Price:      menuItem.Price,
			Quantity:   line.Quantity,
			Total:      lineTotal,
		})
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no orderable items", ErrInvalidRequest)
	}

	total := subtotal.Add(DeliveryFee)
	quote, _, err := s.purchase.Execute(customerID, PurchaseTarget{
		Kind:          models.PurchaseFood,
		ID:            restaurant.ID,
		SellerID:      restaurant.OwnerID,
		Title:         restaurant.Name,
		Amount:        total,
		PriceCurrency: currency.FIAT,
		Available:     restaurant.IsOpen,
	}, req.PaymentCurrency)
	if err != nil {
		return nil, err
	}

	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order items: %w", err)
	}

	order := &models.FoodOrder{
		ID:              uuid.NewString(),
		CustomerID:      customerID,
		CustomerName:    customer.FullName,
		RestaurantID:    restaurant.ID,
		RestaurantName:  restaurant.Name,
		Items:           items,
		Subtotal:        subtotal,
		DeliveryFee:     DeliveryFee,
		TotalAmount:     quote.OriginalAmount,
		DiscountApplied: quote.DiscountAmount,
		FinalAmount:     quote.FinalAmount,
		PaymentCurrency: quote.Currency,
		DeliveryAddress: req.DeliveryAddress,
		Notes:           req.Notes,
		Status:          models.StatusPending,
	}

	_, err = s.db.Exec(
		`INSERT INTO food_orders (id, customer_id, customer_name, restaurant_id, restaurant_name, items, subtotal, delivery_fee, total_amount, discount_applied, final_amount, payment_currency, delivery_address, notes, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.CustomerID, order.CustomerName, order.RestaurantID, order.RestaurantName,
		string(itemsJSON), order.Subtotal, order.DeliveryFee, order.TotalAmount,
		order.DiscountApplied, order.FinalAmount, string(order.PaymentCurrency),
		order.DeliveryAddress, order.Notes, string(order.Status),
	)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error creating food order")
		return nil, fmt.Errorf("failed to create food order: %w", err)
	}

	s.logger.Info().Str("food_order_id", order.ID).Str("customer_id", customerID).Msg("Food order created")
	return s.GetFoodOrder(order.ID)
}

func (s *OrderService) GetFoodOrder(orderID string) (*models.FoodOrder, error) {
	var o models.FoodOrder
	var payCur, status, itemsJSON string

	err := s.db.QueryRow(
		`SELECT id, customer_id, customer_name, restaurant_id, restaurant_name, items, subtotal, delivery_fee, total_amount, discount_applied, final_amount, payment_currency, delivery_address, notes, status, created_at
		 FROM food_orders WHERE id = ?`,
		orderID,
	).Scan(
		&o.ID, &o.CustomerID, &o.CustomerName, &o.RestaurantID, &o.RestaurantName,
		&itemsJSON, &o.Subtotal, &o.DeliveryFee, &o.TotalAmount,
		&o.DiscountApplied, &o.FinalAmount, &payCur, &o.DeliveryAddress, &o.Notes, &status, &o.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: food order", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := json.Unmarshal([]byte(itemsJSON), &o.Items); err != nil {
		return nil, fmt.Errorf("failed to decode order items: %w", err)
	}
	o.PaymentCurrency = currency.Code(payCur)
	o.Status = models.OrderStatus(status)
	return &o, nil
}

func (s *OrderService) ListFoodOrders(customerID string) ([]*models.FoodOrder, error) {
	rows, err := s.db.Query(
		`SELECT id, customer_id, customer_name, restaurant_id, restaurant_name, items, subtotal, delivery_fee, total_amount, discount_applied, final_amount, payment_currency, delivery_address, notes, status, created_at
		 FROM food_orders WHERE customer_id = ? ORDER BY created_at DESC LIMIT 100`,
		customerID,
	)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	var orders []*models.FoodOrder
	for rows.Next() {
		var o models.FoodOrder
		var payCur, status, itemsJSON string
		err := rows.Scan(
			&o.ID, &o.CustomerID, &o.CustomerName, &o.RestaurantID, &o.RestaurantName,
			&itemsJSON, &o.Subtotal, &o.DeliveryFee, &o.TotalAmount,
			&o.DiscountApplied, &o.FinalAmount, &payCur, &o.DeliveryAddress, &o.Notes, &status, &o.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning food order: %w", err)
		}
		if err := json.Unmarshal([]byte(itemsJSON), &o.Items); err != nil {
			return nil, fmt.Errorf("failed to decode order items: %w", err)
		}
		o.PaymentCurrency = currency.Code(payCur)
		o.Status = models.OrderStatus(status)
		orders = append(orders, &o)
	}

	return orders, rows.Err()
}

var validFoodOrderStatuses = map[models.OrderStatus]bool{
	models.StatusConfirmed: true,
	models.StatusPreparing: true,
	models.StatusReady:     true,
	models.StatusInTransit: true,
	models.StatusDelivered: true,
	models.StatusCancelled: true,
}

// UpdateFoodOrderStatus settles on the transition into delivered. The
// restaurant owner receives the undiscounted food subtotal; the delivery
// fee is not part of the settlement.
func (s *OrderService) UpdateFoodOrderStatus(orderID, callerID string, newStatus models.OrderStatus) (*models.FoodOrder, error) {
	if !validFoodOrderStatuses[newStatus] {
		return nil, fmt.Errorf("%w: invalid status %s", ErrInvalidRequest, newStatus)
	}

	order, err := s.GetFoodOrder(orderID)
	if err != nil {
		return nil, err
	}
	restaurant, err := s.catalog.GetRestaurant(order.RestaurantID)
	if err != nil {
		return nil, err
	}
	if restaurant.OwnerID != callerID && order.CustomerID != callerID {
		return nil, fmt.Errorf("%w: caller is neither customer nor restaurant owner", ErrUnauthorized)
	}

	err = s.settleOnTransition("food_orders", orderID, newStatus, models.StatusDelivered, func() error {
		// The restaurant receives the food subtotal; the delivery fee stays
		// with the platform. The subtotal is priced in fiat, so convert it
		// into whatever the customer paid with. Loyalty points still come
		// from the full final amount the customer was debited.
		settled, _ := s.rates.Convert(order.Subtotal, currency.FIAT, order.PaymentCurrency)
		return s.purchase.Settle(restaurant.OwnerID, order.CustomerID, settled, order.FinalAmount, order.PaymentCurrency, models.PurchaseFood, restaurant.Name)
	})
	if err != nil {
		s.logger.Error().Err(err).Str("food_order_id", orderID).Msg("Food order status update failed")
		return nil, err
	}

	return s.GetFoodOrder(orderID)
}
