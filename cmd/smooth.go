/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/notargets/polylaplace/polydiff"
	"github.com/notargets/polylaplace/polymesh"
)

type ModelSmooth struct {
	GridFile   string
	ParamFile  string
	OutputFile string
}

// SmoothCmd represents the smooth command
var SmoothCmd = &cobra.Command{
	Use:   "smooth",
	Short: "Implicit Laplacian smoothing of a polygon mesh",
	Long: `
Runs backward Euler steps of the heat flow on the vertex positions using the
polygon stiffness and mass matrices. Boundary vertices stay fixed; closed
meshes are rescaled to keep their area and centroid when RescaleArea is set.

polylaplace smooth -F mesh.off [-I params.yaml] -O smoothed.off`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
			ms  = &ModelSmooth{}
		)
		if ms.GridFile, err = cmd.Flags().GetString("gridFile"); err != nil {
			panic(err)
		}
		ms.ParamFile, _ = cmd.Flags().GetString("inputParametersFile")
		ms.OutputFile, _ = cmd.Flags().GetString("outputFile")
		defer startProfile().Stop()
		if err = RunSmooth(ms); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(SmoothCmd)
	SmoothCmd.Flags().StringP("gridFile", "F", "", "Mesh file to read in OFF (.off), Wavefront (.obj) or SU2 (.su2) format")
	SmoothCmd.Flags().StringP("inputParametersFile", "I", "", "YAML file for input parameters like:\n\t- TimeStep\n\t- Iterations")
	SmoothCmd.Flags().StringP("outputFile", "O", "smoothed.off", "OFF file to write the smoothed mesh to")
}

func RunSmooth(ms *ModelSmooth) (err error) {
	mesh, ip, err := processInput(ms.GridFile, ms.ParamFile)
	if err != nil {
		return
	}
	cfg, err := newConfig(mesh, ip)
	if err != nil {
		return
	}
	sp := polydiff.SmoothingParameters{
		TimeStep:    ip.TimeStep,
		Iterations:  ip.Iterations,
		LumpedMass:  ip.LumpedMass,
		RescaleArea: ip.RescaleArea,
	}
	var (
		start    = time.Now()
		area0    = polydiff.PolygonSurfaceArea(mesh)
		smoothed *polymesh.SurfaceMesh
	)
	if smoothed, err = polydiff.ImplicitSmooth(mesh, cfg, sp); err != nil {
		return
	}
	fmt.Printf("%d smoothing steps in %v\n", sp.Iterations, time.Since(start))
	fmt.Printf("Surface Area: %8.5f -> %8.5f\n", area0, polydiff.PolygonSurfaceArea(smoothed))
	if err = polymesh.WriteMeshFile(ms.OutputFile, smoothed); err != nil {
		return
	}
	fmt.Printf("wrote %s\n", ms.OutputFile)
	return
}
