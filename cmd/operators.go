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
	"path/filepath"
	"time"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/polylaplace/InputParameters"
	"github.com/notargets/polylaplace/partitions"
	"github.com/notargets/polylaplace/polydiff"
	"github.com/notargets/polylaplace/polymesh"
	"github.com/notargets/polylaplace/utils"
)

type ModelOperators struct {
	GridFile  string
	ParamFile string
	OutputDir string
}

// OperatorsCmd represents the operators command
var OperatorsCmd = &cobra.Command{
	Use:   "operators",
	Short: "Build the polygon Laplace operators of a mesh and optionally export them",
	Long: `
Reads an OFF, OBJ or SU2 mesh, computes the per-face virtual points and builds the
stiffness, mass, prolongation, gradient, gradient mass and divergence
matrices. With -o each matrix is written in MatrixMarket format.

polylaplace operators -F mesh.off [-I params.yaml] [-o outdir]`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
			mo  = &ModelOperators{}
		)
		if mo.GridFile, err = cmd.Flags().GetString("gridFile"); err != nil {
			panic(err)
		}
		mo.ParamFile, _ = cmd.Flags().GetString("inputParametersFile")
		mo.OutputDir, _ = cmd.Flags().GetString("outputDir")
		defer startProfile().Stop()
		if err = RunOperators(mo); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(OperatorsCmd)
	OperatorsCmd.Flags().StringP("gridFile", "F", "", "Mesh file to read in OFF (.off), Wavefront (.obj) or SU2 (.su2) format")
	OperatorsCmd.Flags().StringP("inputParametersFile", "I", "", "YAML file for input parameters like:\n\t- AreaTolerance\n\t- ParallelDegree")
	OperatorsCmd.Flags().StringP("outputDir", "o", "", "directory to write MatrixMarket (.mtx) files into")
}

func RunOperators(mo *ModelOperators) (err error) {
	var (
		mesh *polymesh.SurfaceMesh
		ip   *InputParameters.OperatorParameters
		cfg  polydiff.Config
		ops  *polydiff.Operators
	)
	if mesh, ip, err = processInput(mo.GridFile, mo.ParamFile); err != nil {
		return
	}
	if cfg, err = newConfig(mesh, ip); err != nil {
		return
	}
	start := time.Now()
	if ops, err = polydiff.BuildOperators(mesh, cfg, ip.LumpedMass); err != nil {
		return
	}
	fmt.Printf("Operators built in %v\n", time.Since(start))
	ops.Print()
	fmt.Printf("Surface Area         = %8.5f\n", polydiff.PolygonSurfaceArea(mesh))
	fmt.Printf("Memory               = %s\n", utils.GetMemUsage())
	if len(mo.OutputDir) != 0 {
		err = writeMatrices(mo.OutputDir, ops)
	}
	return
}

func processInput(gridFile, paramFile string) (mesh *polymesh.SurfaceMesh, ip *InputParameters.OperatorParameters, err error) {
	if len(gridFile) == 0 {
		err = fmt.Errorf("must supply a grid file (-F, --gridFile) in .off, .obj or .su2 format")
		return
	}
	ip = InputParameters.NewOperatorParameters()
	if len(paramFile) != 0 {
		var data []byte
		if data, err = os.ReadFile(paramFile); err != nil {
			return
		}
		if err = ip.Parse(data); err != nil {
			err = fmt.Errorf("parsing %s: %w", paramFile, err)
			return
		}
	}
	ip.Print()
	if mesh, err = polymesh.ReadMeshFile(gridFile); err != nil {
		return
	}
	mesh.PrintStatistics()
	return
}

// newConfig maps input parameters to the operator configuration, running the
// METIS face partitioner when requested.
func newConfig(mesh *polymesh.SurfaceMesh, ip *InputParameters.OperatorParameters) (cfg polydiff.Config, err error) {
	cfg = polydiff.DefaultConfig()
	cfg.AreaTolerance = ip.AreaTolerance
	cfg.GradientTolerance = ip.GradientTolerance
	cfg.WeightSumTolerance = ip.WeightSumTolerance
	cfg.ClampCotangents = ip.ClampCotangents
	cfg.CotanBound = ip.CotanBound
	cfg.ParallelDegree = ip.ParallelDegree
	switch ip.Partitioner {
	case "", "contiguous":
	case "metis":
		pc := partitions.DefaultPartitionConfig(int32(ip.NumPartitions))
		pc.Verbose = true
		if cfg.FacePartition, err = partitions.NewFacePartitioner(mesh, pc).Partition(); err != nil {
			return
		}
	default:
		err = fmt.Errorf("unknown partitioner %q, use contiguous or metis", ip.Partitioner)
		return
	}
	err = cfg.Validate()
	return
}

func writeMatrices(dir string, ops *polydiff.Operators) (err error) {
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return
	}
	names, mats := ops.Matrices()
	for i, name := range names {
		var f *os.File
		fileName := filepath.Join(dir, name+".mtx")
		if f, err = os.Create(fileName); err != nil {
			return
		}
		if err = mats[i].WriteMatrixMarket(f); err != nil {
			f.Close()
			return
		}
		if err = f.Close(); err != nil {
			return
		}
		fmt.Printf("wrote %s\n", fileName)
	}
	return
}

type profileStopper interface{ Stop() }

type noProfile struct{}

func (noProfile) Stop() {}

func startProfile() profileStopper {
	switch viper.GetString("profile") {
	case "cpu":
		return profile.Start(profile.CPUProfile, profile.ProfilePath("."))
	case "mem":
		return profile.Start(profile.MemProfile, profile.ProfilePath("."))
	}
	return noProfile{}
}
