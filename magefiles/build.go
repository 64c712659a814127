//go:build mage

package main

import (
	"fmt"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

const shaderDir = "assets/shaders"

// shaderNames lists the pipeline shader pairs compiled to SPIR-V.
var shaderNames = []string{"phong", "light", "overlay"}

// Compiles every GLSL shader pair into the SPIR-V binaries the renderer
// loads at startup.
func (Build) Shaders() error {
	for _, name := range shaderNames {
		for _, stage := range []string{"vert", "frag"} {
			src := filepath.Join(shaderDir, fmt.Sprintf("%s.%s", name, stage))
			out := filepath.Join(shaderDir, fmt.Sprintf("%s.%s.spv", name, stage))
			if _, err := executeCmd("glslc", withArgs(src, "-o", out), withStream()); err != nil {
				return err
			}
		}
	}
	return nil
}

// Builds the engine binary.
func (Build) Engine() error {
	mg.Deps(Build.Shaders)
	if _, err := executeCmd("go", withArgs("build", "-o", "glint", "."), withStream()); err != nil {
		return err
	}
	return nil
}
