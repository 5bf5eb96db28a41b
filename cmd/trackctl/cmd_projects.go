// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"

	"github.com/AleutianAI/AleutianTrack/services/tracker/datatypes"
	"github.com/spf13/cobra"
)

var (
	projectArchived    bool
	projectAllArchived bool
	projectTitle       string
	projectDescription string

	projectsCmd = &cobra.Command{
		Use:   "projects",
		Short: "Manage tracking projects",
	}

	projectsListCmd = &cobra.Command{
		Use:   "list",
		Short: "Lists projects",
		Run:   runProjectsList,
	}

	projectsCreateCmd = &cobra.Command{
		Use:   "create",
		Short: "Creates a new project",
		Run:   runProjectsCreate,
	}

	projectsGetCmd = &cobra.Command{
		Use:   "get [project-id]",
		Short: "Shows one project with its experiments and iterations",
		Args:  cobra.ExactArgs(1),
		Run:   runProjectsGet,
	}

	projectsDeleteCmd = &cobra.Command{
		Use:   "delete [project-id]",
		Short: "Deletes a project and everything inside it",
		Args:  cobra.ExactArgs(1),
		Run:   runProjectsDelete,
	}
)

func init() {
	projectsListCmd.Flags().BoolVar(&projectArchived, "archived", false,
		"Show only archived projects")
	projectsListCmd.Flags().BoolVar(&projectAllArchived, "all", false,
		"Show both active and archived projects")
	projectsCreateCmd.Flags().StringVar(&projectTitle, "title", "", "Project title (required)")
	projectsCreateCmd.Flags().StringVar(&projectDescription, "description", "", "Project description")
	_ = projectsCreateCmd.MarkFlagRequired("title")

	projectsCmd.AddCommand(projectsListCmd)
	projectsCmd.AddCommand(projectsCreateCmd)
	projectsCmd.AddCommand(projectsGetCmd)
	projectsCmd.AddCommand(projectsDeleteCmd)
}

func runProjectsList(cmd *cobra.Command, args []string) {
	ctx, cancel := commandContext()
	defer cancel()

	var archived *bool
	if !projectAllArchived {
		archived = &projectArchived
	}
	projects, err := apiClient().ListProjects(ctx, archived)
	if err != nil {
		fatalAPI("listing projects", err)
	}
	printJSON(projects)
}

func runProjectsCreate(cmd *cobra.Command, args []string) {
	ctx, cancel := commandContext()
	defer cancel()

	created, err := apiClient().CreateProject(ctx, &datatypes.Project{
		Title:       projectTitle,
		Description: projectDescription,
	})
	if err != nil {
		fatalAPI("creating project", err)
	}
	printJSON(created)
}

func runProjectsGet(cmd *cobra.Command, args []string) {
	ctx, cancel := commandContext()
	defer cancel()

	project, err := apiClient().GetProject(ctx, args[0])
	if err != nil {
		fatalAPI("fetching project", err)
	}
	printJSON(project)
}

func runProjectsDelete(cmd *cobra.Command, args []string) {
	ctx, cancel := commandContext()
	defer cancel()

	if err := apiClient().DeleteProject(ctx, args[0]); err != nil {
		fatalAPI("deleting project", err)
	}
	fmt.Println("Project deleted.")
}
