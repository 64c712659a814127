package loaders

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/glint3d/glint/engine/math"
	"github.com/glint3d/glint/engine/scene"
)

// LoadModel reads the first mesh primitive of a glTF or GLB file and returns
// it as a lit mesh. Embedded base-color textures are decoded too when present.
func LoadModel(path string) (*scene.LitMesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model %s: %w", path, err)
	}
	if len(doc.Meshes) == 0 || len(doc.Meshes[0].Primitives) == 0 {
		return nil, fmt.Errorf("model %s contains no mesh primitives", path)
	}
	prim := doc.Meshes[0].Primitives[0]

	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("model %s: primitive has no POSITION attribute", path)
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("model %s: read positions: %w", path, err)
	}

	vertices := make([]math.Vertex3D, len(positions))
	for i, p := range positions {
		vertices[i].Position = math.NewVec3(p[0], p[1], p[2])
	}

	if normIdx, ok := prim.Attributes["NORMAL"]; ok {
		normals, err := modeler.ReadNormal(doc, doc.Accessors[normIdx], nil)
		if err != nil {
			return nil, fmt.Errorf("model %s: read normals: %w", path, err)
		}
		for i := range vertices {
			if i < len(normals) {
				vertices[i].Normal = math.NewVec3(normals[i][0], normals[i][1], normals[i][2])
			}
		}
	}

	if uvIdx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, err := modeler.ReadTextureCoord(doc, doc.Accessors[uvIdx], nil)
		if err != nil {
			return nil, fmt.Errorf("model %s: read texcoords: %w", path, err)
		}
		for i := range vertices {
			if i < len(uvs) {
				vertices[i].Texcoord = math.NewVec2(uvs[i][0], uvs[i][1])
			}
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("model %s: read indices: %w", path, err)
		}
	} else {
		indices = make([]uint32, len(vertices))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	mesh := &scene.LitMesh{
		Vertices: vertices,
		Indices:  indices,
		Material: scene.Material{
			Diffuse:  math.NewVec4(1, 1, 1, 1),
			Specular: math.NewVec4(1, 1, 1, 1),
		},
		Transform: math.NewMat4Identity(),
	}

	if tex, err := baseColorTexture(doc, prim); err != nil {
		return nil, fmt.Errorf("model %s: %w", path, err)
	} else if tex != nil {
		mesh.Material.Texture = tex
	}
	return mesh, nil
}

// baseColorTexture decodes the primitive's base-color texture from an
// embedded buffer view. External image URIs are left to the texture loader.
func baseColorTexture(doc *gltf.Document, prim *gltf.Primitive) (*scene.Texture, error) {
	if prim.Material == nil {
		return nil, nil
	}
	mat := doc.Materials[*prim.Material]
	if mat.PBRMetallicRoughness == nil || mat.PBRMetallicRoughness.BaseColorTexture == nil {
		return nil, nil
	}
	texture := doc.Textures[mat.PBRMetallicRoughness.BaseColorTexture.Index]
	if texture.Source == nil {
		return nil, nil
	}
	img := doc.Images[*texture.Source]
	if img.BufferView == nil {
		return nil, nil
	}
	raw, err := modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
	if err != nil {
		return nil, fmt.Errorf("read embedded texture: %w", err)
	}
	return DecodeTexture(img.Name, raw)
}
