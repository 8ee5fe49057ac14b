// Package api provides the typed HTTP client for the Academic Repository
// backend. Types mirror the backend wire contract without depending on
// server-side packages.
package api

import "time"

// Role identifies a user's role in the repository.
type Role string

const (
	RoleStudent    Role = "student"
	RoleStaff      Role = "staff"
	RoleSupervisor Role = "supervisor"
	RoleAdmin      Role = "admin"
)

// DocumentStatus is the review state of a document.
type DocumentStatus string

const (
	StatusPending     DocumentStatus = "pending"
	StatusUnderReview DocumentStatus = "under_review"
	StatusApproved    DocumentStatus = "approved"
	StatusRejected    DocumentStatus = "rejected"
)

// User is the authenticated identity returned by the auth endpoints.
type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           Role      `json:"role"`
	DepartmentID   string    `json:"department_id"`
	DepartmentName string    `json:"department_name,omitempty"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Scope carries the identity fields used to scope dashboard queries.
type Scope struct {
	Role         Role
	UserID       string
	DepartmentID string
}

// ScopeFor builds a query scope from a user.
func ScopeFor(u *User) Scope {
	if u == nil {
		return Scope{}
	}
	return Scope{Role: u.Role, UserID: u.ID, DepartmentID: u.DepartmentID}
}

// Document is the full document record.
type Document struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	FileName      string         `json:"file_name"`
	FileSize      int64          `json:"file_size"`
	FileType      string         `json:"file_type"`
	Status        DocumentStatus `json:"status"`
	UploaderID    string         `json:"author_id"`
	Department    string         `json:"department"`
	Tags          []string       `json:"tags,omitempty"`
	Version       int            `json:"version"`
	IsPublic      bool           `json:"is_public"`
	DownloadCount int            `json:"download_count"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// Uploader identifies who uploaded a recent document.
type Uploader struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// RecentDocument is the summary shape returned by /dashboard/recent-documents.
type RecentDocument struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	Status     DocumentStatus `json:"status"`
	UploadedAt time.Time      `json:"uploaded_at"`
	Downloads  int            `json:"downloads"`
	Uploader   Uploader       `json:"uploader"`
}

// ActivityItem is a single event from /dashboard/recent-activity.
type ActivityItem struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
	DocumentID string    `json:"document_id,omitempty"`
}

// --- Role-shaped dashboard stats ---
//
// /dashboard/stats returns a different set of counters per role. Each shape
// gets its own type so illegal field combinations are unrepresentable; all
// four map onto the common StatsView the dashboard renders.

// StudentStats counts a student's own uploads.
type StudentStats struct {
	TotalUploads    int `json:"total_uploads"`
	ApprovedUploads int `json:"approved_uploads"`
	PendingReviews  int `json:"pending_reviews"`
	TotalDownloads  int `json:"total_downloads"`
}

// StaffStats counts documents across the staff member's department.
type StaffStats struct {
	DepartmentDocuments int `json:"department_documents"`
	ApprovedDocuments   int `json:"approved_documents"`
	PendingReviews      int `json:"pending_reviews"`
	TotalDownloads      int `json:"total_downloads"`
}

// SupervisorStats counts the supervisor's review workload.
type SupervisorStats struct {
	DepartmentDocuments int `json:"department_documents"`
	ApprovedDocuments   int `json:"approved_documents"`
	AssignedReviews     int `json:"assigned_reviews"`
	CompletedReviews    int `json:"completed_reviews"`
}

// AdminStats counts the whole system.
type AdminStats struct {
	TotalDocuments    int `json:"total_documents"`
	ApprovedDocuments int `json:"approved_documents"`
	PendingReviews    int `json:"pending_reviews"`
	TotalDownloads    int `json:"total_downloads"`
	TotalUsers        int `json:"total_users"`
}

// StatsView is the role-independent view model the dashboard renders.
type StatsView struct {
	Role              Role
	TotalDocuments    int
	PendingReviews    int
	ApprovedDocuments int
	TotalDownloads    int
	// TotalUsers is populated for admins only.
	TotalUsers int
}

// View maps student counters onto the common view model.
func (s StudentStats) View() StatsView {
	return StatsView{
		Role:              RoleStudent,
		TotalDocuments:    s.TotalUploads,
		PendingReviews:    s.PendingReviews,
		ApprovedDocuments: s.ApprovedUploads,
		TotalDownloads:    s.TotalDownloads,
	}
}

// View maps staff counters onto the common view model.
func (s StaffStats) View() StatsView {
	return StatsView{
		Role:              RoleStaff,
		TotalDocuments:    s.DepartmentDocuments,
		PendingReviews:    s.PendingReviews,
		ApprovedDocuments: s.ApprovedDocuments,
		TotalDownloads:    s.TotalDownloads,
	}
}

// View maps supervisor counters onto the common view model. The download
// column carries completed reviews for supervisors, matching what the
// backend surfaces for that role.
func (s SupervisorStats) View() StatsView {
	return StatsView{
		Role:              RoleSupervisor,
		TotalDocuments:    s.DepartmentDocuments,
		PendingReviews:    s.AssignedReviews,
		ApprovedDocuments: s.ApprovedDocuments,
		TotalDownloads:    s.CompletedReviews,
	}
}

// View maps admin counters onto the common view model.
func (s AdminStats) View() StatsView {
	return StatsView{
		Role:              RoleAdmin,
		TotalDocuments:    s.TotalDocuments,
		PendingReviews:    s.PendingReviews,
		ApprovedDocuments: s.ApprovedDocuments,
		TotalDownloads:    s.TotalDownloads,
		TotalUsers:        s.TotalUsers,
	}
}

// --- Auth ---

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the register request body.
type Registration struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Role            Role   `json:"role"`
	DepartmentID    string `json:"department_id"`
}

// TokenPair is returned by login and register.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	User         *User  `json:"user"`
}

// RefreshResponse is returned by the token refresh endpoint.
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// --- Documents ---

// DocumentFilter narrows a document listing.
type DocumentFilter struct {
	Search     string
	Status     DocumentStatus
	Department string
	Page       int
	Limit      int
}

// DocumentPage is a paginated document listing.
type DocumentPage struct {
	Items []Document `json:"items"`
	Total int        `json:"total"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
	Pages int        `json:"pages"`
}

// ReviewSubmission is the body for POST /reviews.
type ReviewSubmission struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
	Comments   string `json:"comments"`
	Rating     int    `json:"rating,omitempty"`
}

// Review is a review record attached to a document.
type Review struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	ReviewerID string    `json:"reviewer_id"`
	Status     string    `json:"status"`
	Comments   string    `json:"comments"`
	Rating     int       `json:"rating,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// --- Users / admin ---

// UserFilter narrows an admin user listing.
type UserFilter struct {
	Role       Role
	Department string
	Search     string
	Skip       int
	Limit      int
}

// UserPage is the admin user listing shape.
type UserPage struct {
	Items []User `json:"items"`
	Total int    `json:"total"`
	Skip  int    `json:"skip"`
	Limit int    `json:"limit"`
}

// NewUser is the body for creating a user as admin.
type NewUser struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
	DepartmentID string `json:"department_id,omitempty"`
	IsActive     *bool  `json:"is_active,omitempty"`
}

// UserUpdate is the body for updating a user as admin. Nil fields are
// left unchanged.
type UserUpdate struct {
	Name         *string `json:"name,omitempty"`
	Email        *string `json:"email,omitempty"`
	Role         *Role   `json:"role,omitempty"`
	DepartmentID *string `json:"department_id,omitempty"`
	IsActive     *bool   `json:"is_active,omitempty"`
}

// UserOverview is returned by /users/stats/overview.
type UserOverview struct {
	TotalUsers  int `json:"total_users"`
	ActiveUsers int `json:"active_users"`
	ByRole      struct {
		Students    int `json:"students"`
		Staff       int `json:"staff"`
		Supervisors int `json:"supervisors"`
		Admins      int `json:"admins"`
	} `json:"by_role"`
	DepartmentsCount int `json:"departments_count"`
}

// Department is returned by /users/departments/list.
type Department struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
