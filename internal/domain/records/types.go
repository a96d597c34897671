// Package records defines the wire shapes of the admin backend's domain
// records. Field names follow the backend's JSON contracts exactly; the
// stores never rename or reshape what the server returns.
package records

import "strconv"

// User statuses as reported by the backend.
const (
	UserActive   = "Active"
	UserInactive = "Inactive"
)

// User is an account record from GET /User. The same shape is returned by
// the profile endpoints, which additionally populate the image fields.
type User struct {
	UserID           int    `json:"userId"`
	UserName         string `json:"userName"`
	FullName         string `json:"fullName"`
	Email            string `json:"email"`
	PhoneNumber      string `json:"phoneNumber"`
	Address          string `json:"address"`
	Status           string `json:"status"`
	Role             string `json:"role"`
	PremiumPackageID *int   `json:"premiumPackageId"`
	DateOfBirth      string `json:"dateOfBirth"`
	ImageUser        string `json:"imageUser,omitempty"`
	ImageBackground  string `json:"imageBackground,omitempty"`
	Description      string `json:"description,omitempty"`
}

// Key returns the identity key used for collection splicing.
func (u User) Key() string { return strconv.Itoa(u.UserID) }

// Banned reports whether the account is in the inactive (banned) state.
func (u User) Banned() bool { return u.Status == UserInactive }

// Product is a catalog record from GET /Products.
type Product struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Status      string  `json:"status"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	Description string  `json:"description,omitempty"`
}

func (p Product) Key() string { return p.ProductID }

// OrderItem is a line item nested in an Order.
type OrderItem struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

// Order is a record from GET /Order/all. Orders with no line items are
// placeholders created by abandoned checkouts and are dropped at fetch time.
type Order struct {
	OrderID   string      `json:"orderId"`
	UserID    int         `json:"userId"`
	UserName  string      `json:"userName"`
	Items     []OrderItem `json:"items"`
	Total     float64     `json:"totalPrice"`
	Status    string      `json:"status"`
	OrderDate string      `json:"orderDate"`
}

func (o Order) Key() string { return o.OrderID }

// Payment statuses as reported by the backend.
const (
	PaymentPending   = "Pending"
	PaymentCompleted = "Completed"
	PaymentFailed    = "Failed"
	PaymentCancelled = "Cancelled"
)

// Payment is a record from GET /Payment/getpayment.
type Payment struct {
	UserID        int     `json:"userId"`
	Amount        float64 `json:"amount"`
	Description   string  `json:"description"`
	BuyerName     string  `json:"buyerName"`
	BuyerEmail    string  `json:"buyerEmail"`
	BuyerPhone    string  `json:"buyerPhone"`
	BuyerAddress  string  `json:"buyerAddress"`
	Method        int     `json:"method"`
	OrderID       *string `json:"orderId"`
	TransactionID *string `json:"transactionId"`
	OrderCode     int64   `json:"orderCode"`
	Status        string  `json:"status"`
	CreatedAt     string  `json:"createdAt,omitempty"`
}

// Key prefers the transaction ID and falls back to the order code, matching
// how the backend identifies a payment across its endpoints.
func (p Payment) Key() string {
	if p.TransactionID != nil && *p.TransactionID != "" {
		return *p.TransactionID
	}
	return strconv.FormatInt(p.OrderCode, 10)
}

// Feedback is a record from GET /Feedback/all.
type Feedback struct {
	FeedbackID  string  `json:"feedbackId"`
	Description *string `json:"description"`
	Rating      int     `json:"rating"`
	UserID      int     `json:"userId"`
	UserName    string  `json:"userName"`
	ProductName string  `json:"productName"`
	ImageURL    *string `json:"imageURL"`
}

func (f Feedback) Key() string { return f.FeedbackID }

// TodayVisits is the aggregate returned by GET /Log/today.
type TodayVisits struct {
	Success     bool   `json:"success"`
	Date        string `json:"date"`
	TotalVisits int    `json:"totalVisits"`
}

// DailyVisit is one day's visit count inside a VisitHistory.
type DailyVisit struct {
	Date   string `json:"date"`
	Visits int    `json:"visits"`
}

// VisitHistory is the aggregate returned by GET /Log/all.
type VisitHistory struct {
	Success     bool         `json:"success"`
	TotalVisits int          `json:"totalVisits"`
	VisitDays   []DailyVisit `json:"visitDays"`
}

// MonthlyRegistrations is the aggregate returned by
// GET /Log/get-newUser-this-month.
type MonthlyRegistrations struct {
	Success            bool `json:"success"`
	Month              int  `json:"month"`
	TotalRegistrations int  `json:"totalRegistrations"`
}
