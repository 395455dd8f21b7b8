package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/unitgrid/pkg/domain"
	"github.com/aretw0/unitgrid/pkg/schema"
	"github.com/spf13/cobra"
)

// readProject loads a project document from path ("-" reads stdin). A project
// without columns gets the default conveyor schema; --schema replaces it.
func readProject(cmd *cobra.Command, path string) (*domain.Project, error) {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var p domain.Project
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode project %s: %w", path, err)
	}
	p.Normalize()
	if len(p.InputDataConfig) == 0 {
		p.InputDataConfig = schema.DefaultConveyorSchema()
	}

	if schemaPath, _ := cmd.Flags().GetString("schema"); schemaPath != "" {
		s, err := schema.LoadFile(schemaPath)
		if err != nil {
			return nil, err
		}
		p.InputDataConfig = s
	}
	return &p, nil
}

// writeProject writes p as indented JSON to path, or to stdout when path is empty.
func writeProject(cmd *cobra.Command, path string, p *domain.Project) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
