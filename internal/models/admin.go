package models

import "github.com/golang-jwt/jwt"

type AdminUser struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
}

type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.StandardClaims
}

type Metrics struct {
	TotalRevenue          float64 `json:"total_revenue"`
	TotalJobs             int     `json:"total_jobs"`
	AvgJobValue           float64 `json:"avg_job_value"`
	CustomerRetentionRate float64 `json:"customer_retention_rate"`
	PendingLeads          int     `json:"pending_leads"`
	ScheduledJobs         int     `json:"scheduled_jobs"`
}
