// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianTrack/services/tracker/handlers"
	"github.com/AleutianAI/AleutianTrack/services/tracker/services"
)

// Services bundles the per-entity services the routes dispatch to.
type Services struct {
	Projects    *services.ProjectService
	Experiments *services.ExperimentService
	Iterations  *services.IterationService
	Datasets    *services.DatasetService
	Models      *services.MonitoredModelService
}

func SetupRoutes(router *gin.Engine, svc Services) {
	router.GET("/health", handlers.HealthCheck)

	// API version 1 group
	v1 := router.Group("/v1")
	{
		projects := v1.Group("/projects")
		{
			projects.GET("", handlers.ListProjects(svc.Projects))
			projects.POST("", handlers.CreateProject(svc.Projects))
			projects.GET("/title/:title", handlers.GetProjectByTitle(svc.Projects))
			projects.GET("/:project_id", handlers.GetProject(svc.Projects))
			projects.GET("/:project_id/base", handlers.GetProjectBase(svc.Projects))
			projects.PUT("/:project_id", handlers.UpdateProject(svc.Projects))
			projects.DELETE("/:project_id", handlers.DeleteProject(svc.Projects))

			experiments := projects.Group("/:project_id/experiments")
			{
				experiments.GET("", handlers.ListExperiments(svc.Experiments))
				experiments.POST("", handlers.CreateExperiment(svc.Experiments))
				experiments.GET("/name/:name", handlers.GetExperimentByName(svc.Experiments))
				experiments.GET("/:experiment_id", handlers.GetExperiment(svc.Experiments))
				experiments.PUT("/:experiment_id", handlers.UpdateExperiment(svc.Experiments))
				experiments.DELETE("/:experiment_id", handlers.DeleteExperiment(svc.Experiments))
				experiments.POST("/delete-iterations", handlers.DeleteIterations(svc.Experiments))

				iterations := experiments.Group("/:experiment_id/iterations")
				{
					iterations.GET("", handlers.ListIterations(svc.Iterations))
					iterations.POST("", handlers.CreateIteration(svc.Iterations))
					iterations.GET("/name/:name", handlers.GetIterationsByName(svc.Iterations))
					iterations.GET("/:iteration_id", handlers.GetIteration(svc.Iterations))
					iterations.PUT("/:iteration_id", handlers.UpdateIteration(svc.Iterations))
					iterations.DELETE("/:iteration_id", handlers.DeleteIteration(svc.Iterations))
				}
			}
		}

		datasets := v1.Group("/datasets")
		{
			datasets.GET("", handlers.ListDatasets(svc.Datasets))
			datasets.POST("", handlers.CreateDataset(svc.Datasets))
			datasets.GET("/name/:name", handlers.GetDatasetsByName(svc.Datasets))
			datasets.GET("/name/:name/version/:version", handlers.GetDatasetByNameVersion(svc.Datasets))
			datasets.GET("/:dataset_id", handlers.GetDataset(svc.Datasets))
			datasets.PUT("/:dataset_id", handlers.UpdateDataset(svc.Datasets))
			datasets.DELETE("/:dataset_id", handlers.DeleteDataset(svc.Datasets))
		}

		models := v1.Group("/monitored-models")
		{
			models.GET("", handlers.ListMonitoredModels(svc.Models))
			models.POST("", handlers.CreateMonitoredModel(svc.Models))
			models.GET("/non-archived", handlers.ListNonArchivedMonitoredModels(svc.Models))
			models.GET("/name/:name", handlers.GetMonitoredModelByName(svc.Models))
			models.GET("/:model_id", handlers.GetMonitoredModel(svc.Models))
			models.PUT("/:model_id", handlers.UpdateMonitoredModel(svc.Models))
			models.DELETE("/:model_id", handlers.DeleteMonitoredModel(svc.Models))

			models.GET("/:model_id/ml-model", handlers.GetMLModelMetadata(svc.Models))
			models.POST("/:model_id/predict", handlers.Predict(svc.Models))
			models.PUT("/:model_id/predictions/:prediction_id/actual", handlers.SetPredictionActual(svc.Models))
			models.DELETE("/:model_id/predictions/:prediction_id/actual", handlers.ClearPredictionActual(svc.Models))

			models.POST("/:model_id/charts", handlers.AddMonitoredModelChart(svc.Models))
			models.GET("/:model_id/charts/:chart_id", handlers.GetMonitoredModelChart(svc.Models))
			models.PUT("/:model_id/charts/:chart_id", handlers.UpdateMonitoredModelChart(svc.Models))
			models.DELETE("/:model_id/charts/:chart_id", handlers.DeleteMonitoredModelChart(svc.Models))
		}
	}
}
