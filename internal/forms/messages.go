package forms

var labels = map[string]string{
	"firstName":  "First name",
	"middleName": "Middle name",
	"lastName":   "Last name",
	"department": "Department",
}

var messages = map[string]map[string]string{
	"email": {
		"required": "Email is required",
		"email":    "Invalid email address",
	},
	"password": {
		"required":   "Password is required",
		"min":        "Password must be at least 8 characters",
		"hasupper":   "Password must contain at least one uppercase letter",
		"haslower":   "Password must contain at least one lowercase letter",
		"hasdigit":   "Password must contain at least one number",
		"hasspecial": "Password must contain at least one special character",
	},
	"confirmPassword": {
		"required": "Please confirm your password",
		"eqfield":  "Passwords must match",
	},
	"role": {
		"required": "Role is required",
		"oneof":    "Please select a valid role",
	},
	"token": {
		"required": "Reset link is missing or incomplete",
	},
	"startDate": {
		"required": "Start date is required",
		"datetime": "Start date must be a valid date",
		"notpast":  "Start date cannot be in the past",
	},
	"endDate": {
		"required":  "End date is required",
		"datetime":  "End date must be a valid date",
		"onorafter": "End date must be after start date",
	},
	"reason": {
		"required": "Reason is required",
		"min":      "Please provide more details (at least 10 characters)",
		"max":      "Reason must be less than 500 characters",
	},
	"type": {
		"required": "Leave type is required",
		"oneof":    "Please select a valid leave type",
	},
}

// Message returns the user-facing text for a failed rule on a field.
func Message(field, tag string) string {
	if byTag, ok := messages[field]; ok {
		if msg, ok := byTag[tag]; ok {
			return msg
		}
	}
	if label, ok := labels[field]; ok {
		switch tag {
		case "required":
			return label + " is required"
		case "min":
			return label + " must be at least 2 characters"
		case "max":
			if field == "department" {
				return label + " must be less than 50 characters"
			}
			return label + " must be less than 25 characters"
		}
	}
	return "Invalid value"
}

const (
	LoginFailed          = "Invalid credentials. Please try again."
	SignupFailed         = "Failed to create account. Please try again."
	ForgotPasswordFailed = "Failed to send reset link. Please try again."
	ResetPasswordFailed  = "Failed to reset password. Please try again."
	SickLeaveFailed      = "Failed to submit request. Please try again."

	LoginSucceeded          = "Signed in successfully! Redirecting..."
	SignupSucceeded         = "Account created successfully! Redirecting to dashboard..."
	ForgotPasswordSucceeded = "If an account with that email exists, we have sent a password reset link."
	ResetPasswordSucceeded  = "Your password has been updated. You can now sign in."
	SickLeaveSucceeded      = "Sick leave request submitted successfully!"
)

type Option struct {
	Value string
	Label string
}

var (
	Departments = []Option{
		{"", "Select Department"},
		{"Engineering", "Engineering"},
		{"Marketing", "Marketing"},
		{"Sales", "Sales"},
		{"Human Resources", "Human Resources"},
		{"Finance", "Finance"},
		{"Operations", "Operations"},
		{"Customer Support", "Customer Support"},
		{"Product", "Product"},
		{"Design", "Design"},
		{"Other", "Other"},
	}
	Roles = []Option{
		{"employee", "Employee"},
		{"admin", "Administrator"},
	}
	LeaveTypes = []Option{
		{"", "Select Leave Type"},
		{"sick", "Sick Leave"},
		{"medical", "Medical Leave"},
	}
)
