package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/felipekgouvea/cerg/internal/handlers"
	"github.com/felipekgouvea/cerg/internal/middleware"
)

func setupAPIRoutes(api *gin.RouterGroup) {
	preRegs := api.Group("/pre-registrations")
	{
		preRegs.GET("", middleware.RequirePermission("pre_registrations_view"), handlers.ListPreRegistrationsHandler)
		preRegs.GET("/export", middleware.RequirePermission("pre_registrations_view"), handlers.ExportPreRegistrationsHandler)
		preRegs.GET("/:id", middleware.RequirePermission("pre_registrations_view"), handlers.GetPreRegistrationHandler)
		preRegs.GET("/:id/whatsapp", middleware.RequirePermission("pre_registrations_view"), handlers.PreRegistrationWhatsAppHandler)
		preRegs.PUT("/:id", middleware.RequirePermission("pre_registrations_edit"), handlers.UpdatePreRegistrationHandler)
		preRegs.PATCH("/:id/status", middleware.RequirePermission("pre_registrations_edit"), handlers.UpdatePreRegistrationStatusHandler)
		preRegs.DELETE("/:id", middleware.RequirePermission("pre_registrations_edit"), handlers.DeletePreRegistrationHandler)
	}

	preRes := api.Group("/pre-reenrollments")
	{
		preRes.GET("", middleware.RequirePermission("pre_reenrollments_view"), handlers.ListPreReenrollmentsHandler)
		preRes.POST("", middleware.RequirePermission("pre_reenrollments_edit"), handlers.CreatePreReenrollmentHandler)
		preRes.GET("/:id", middleware.RequirePermission("pre_reenrollments_view"), handlers.GetPreReenrollmentHandler)
		preRes.PUT("/:id", middleware.RequirePermission("pre_reenrollments_edit"), handlers.UpdatePreReenrollmentHandler)
		preRes.PATCH("/:id/status", middleware.RequirePermission("pre_reenrollments_edit"), handlers.UpdatePreReenrollmentStatusHandler)
		preRes.DELETE("/:id", middleware.RequirePermission("pre_reenrollments_edit"), handlers.DeletePreReenrollmentHandler)

		preRes.GET("/:id/payment-info", middleware.RequirePermission("installments_view"), handlers.GetPrePaymentInfoHandler)
		preRes.GET("/:id/installments", middleware.RequirePermission("installments_view"), handlers.ListPreInstallmentsHandler)
		preRes.POST("/:id/installments/generate", middleware.RequirePermission("installments_edit"), handlers.GeneratePreInstallmentsHandler)
	}

	agreements := api.Group("/agreements")
	{
		agreements.GET("/:id/installments", middleware.RequirePermission("installments_view"), handlers.ListInstallmentsHandler)
		agreements.POST("/:id/installments", middleware.RequirePermission("installments_edit"), handlers.AddInstallmentHandler)
	}

	installments := api.Group("/installments")
	{
		installments.PATCH("/:id", middleware.RequirePermission("installments_edit"), handlers.UpdateInstallmentHandler)
		installments.POST("/:id/settle", middleware.RequirePermission("installments_edit"), handlers.SettleInstallmentHandler)
		installments.DELETE("/:id", middleware.RequirePermission("installments_edit"), handlers.DeleteInstallmentHandler)
	}

	contracts := api.Group("/contracts")
	{
		contracts.GET("", middleware.RequirePermission("contracts_view"), handlers.ListContractsHandler)
		contracts.GET("/export", middleware.RequirePermission("contracts_view"), handlers.ExportContractsHandler)
		contracts.GET("/:id", middleware.RequirePermission("contracts_view"), handlers.GetContractHandler)
		contracts.POST("/from-pre/:id", middleware.RequirePermission("contracts_edit"), handlers.CreateContractFromPreHandler)
		contracts.PATCH("/:id/status", middleware.RequirePermission("contracts_edit"), handlers.UpdateContractStatusHandler)
	}

	students := api.Group("/students")
	{
		students.GET("", middleware.RequirePermission("students_view"), handlers.ListStudentsHandler)
		students.GET("/:id", middleware.RequirePermission("students_view"), handlers.GetStudentHandler)
		students.POST("", middleware.RequirePermission("students_edit"), handlers.CreateStudentHandler)
		students.PUT("/:id", middleware.RequirePermission("students_edit"), handlers.UpdateStudentHandler)
		students.DELETE("/:id", middleware.RequirePermission("students_edit"), handlers.DeleteStudentHandler)
	}

	services := api.Group("/services")
	{
		services.GET("", middleware.RequirePermission("services_view"), handlers.ListServicesHandler)
		services.GET("/values", middleware.RequirePermission("services_view"), handlers.ListServiceValuesHandler)
		services.PUT("/values", middleware.RequirePermission("services_edit"), handlers.UpsertServiceValuesHandler)
	}

	api.GET("/dashboard", middleware.RequirePermission("dashboard_view"), handlers.GetDashboardHandler)
	api.GET("/reports", middleware.RequirePermission("reports_view"), handlers.GetReportHandler)
	api.GET("/reports/export", middleware.RequirePermission("reports_view"), handlers.ExportReportHandler)
}
