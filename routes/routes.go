package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"

	controller "workhive/controllers"
	"workhive/middleware"
	"workhive/utils"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	authController := controller.NewAuthController(db, log.New(os.Stdout, "AUTH: ", log.Ldate|log.Ltime|log.Lshortfile))
	companyController := controller.NewCompanyController(db, log.New(os.Stdout, "CMP: ", log.LstdFlags))
	employeeController := controller.NewEmployeeController(db, log.New(os.Stdout, "EMPLOYEE: ", log.LstdFlags))
	teamController := controller.NewTeamController(db, log.New(os.Stdout, "TEAM: ", log.LstdFlags))
	taskController := controller.NewTaskController(db, log.New(os.Stdout, "TASK: ", log.LstdFlags))
	chatController := controller.NewChatController(db, log.New(os.Stdout, "CHAT: ", log.LstdFlags))
	profileController := controller.NewProfileController(db, log.New(os.Stdout, "PROFILE: ", log.LstdFlags))

	api := app.Group("/api", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Public auth endpoints (no session required)
	auth := api.Group("/auth")
	auth.Post("/signup", authController.Signup)
	auth.Post("/cmp/signin", middleware.SigninRateLimiter(), authController.SigninCompany)
	auth.Post("/admin/signin", middleware.SigninRateLimiter(), authController.SigninAdmin)
	auth.Post("/employee/signin", middleware.SigninRateLimiter(), authController.SigninEmployee)
	auth.Post("/signout", authController.Signout)
	auth.Post("/forgot-password", authController.ForgotPassword)

	// Company surface
	cmp := api.Group("/cmp", middleware.RequireSession(db, utils.RoleCompany))
	cmp.Get("/admins", companyController.GetAdmins)
	cmp.Post("/admins", companyController.CreateAdmin)
	cmp.Get("/admins/:adminId", companyController.GetAdmin)
	cmp.Put("/admins/:adminId", companyController.UpdateAdmin)
	cmp.Delete("/admins/:adminId", companyController.DeleteAdmin)
	cmp.Get("/employees", companyController.GetEmployees)
	cmp.Get("/tasks", companyController.GetTasks)
	cmp.Get("/dashboard", companyController.Dashboard)
	cmp.Get("/profile", profileController.GetProfile)
	cmp.Patch("/profile", profileController.UpdateProfile)

	// Admin surface
	admin := api.Group("/admin", middleware.RequireSession(db, utils.RoleAdmin))
	admin.Get("/employees", employeeController.GetEmployees)
	admin.Post("/employees", employeeController.CreateEmployee)
	admin.Get("/employees/:employeeId", employeeController.GetEmployee)
	admin.Put("/employees/:employeeId", employeeController.UpdateEmployee)
	admin.Delete("/employees/:employeeId", employeeController.DeleteEmployee)
	admin.Get("/teams", teamController.GetTeams)
	admin.Post("/teams", teamController.CreateTeam)
	admin.Get("/teams/:teamId", teamController.GetTeam)
	admin.Put("/teams/:teamId", teamController.UpdateTeam)
	admin.Delete("/teams/:teamId", teamController.DeleteTeam)
	admin.Get("/profile", profileController.GetProfile)
	admin.Patch("/profile", profileController.UpdateProfile)

	// Tasks: admins create/delete, admins and assigned employees read/update
	tasks := api.Group("/tasks")
	tasks.Get("/", middleware.RequireSession(db, utils.RoleAdmin, utils.RoleEmployee), taskController.GetTasks)
	tasks.Post("/", middleware.RequireSession(db, utils.RoleAdmin), taskController.CreateTask)
	tasks.Patch("/:taskId", middleware.RequireSession(db, utils.RoleAdmin, utils.RoleEmployee), taskController.UpdateTask)
	tasks.Delete("/:taskId", middleware.RequireSession(db, utils.RoleAdmin), taskController.DeleteTask)

	// Employee surface
	employee := api.Group("/employee", middleware.RequireSession(db, utils.RoleEmployee))
	employee.Get("/teams", teamController.GetEmployeeTeams)
	employee.Get("/profile", profileController.GetProfile)
	employee.Patch("/profile", profileController.UpdateProfile)

	// Chat: any role; clients poll these endpoints
	chat := api.Group("/chat", middleware.RequireSession(db))
	chat.Get("/", chatController.GetChats)
	chat.Post("/", chatController.SendChat)
	chat.Get("/contacts", chatController.GetContacts)
	chat.Get("/unread", chatController.UnreadCount)
	chat.Post("/read", chatController.MarkRead)

	// Role-agnostic profile endpoints
	user := api.Group("/user", middleware.RequireSession(db))
	user.Get("/profile", profileController.GetProfile)
	user.Patch("/profile", profileController.UpdateProfile)
	user.Post("/change-password", profileController.ChangePassword)

	// Analytics and billing stub
	api.Get("/analytics", middleware.RequireSession(db, utils.RoleAdmin, utils.RoleEmployee), taskController.Analytics)
	api.Get("/subscriptions", middleware.RequireSession(db), controller.GetSubscription)
	api.Post("/subscriptions", middleware.RequireSession(db), controller.CreateSubscription)
}
