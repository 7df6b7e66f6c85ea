package renderer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"model-viewer/scene"
)

// ProgramSource is one vertex/fragment pair.
type ProgramSource struct {
	Name     string
	Vertex   string
	Fragment string
}

// Program names, also the file stems looked up in a shader directory.
const (
	PhongProgram   = "phong"
	GouraudProgram = "gouraud"
	LampProgram    = "lamp"
)

const lightBlock = `#define MAX_LIGHTS %d
struct Light {
    vec4 position;
    vec3 intensity;
    float attenuation;
};
uniform Light allLights[MAX_LIGHTS];
uniform int numLights;
`

const phongVert = `#version 410 core
layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec2 aTexCoords;

uniform mat4 model;
uniform mat4 view;
uniform mat4 projection;

out vec3 FragPos;
out vec3 Normal;
flat out vec3 FlatNormal;
out vec2 TexCoords;

void main() {
    vec4 world = model * vec4(aPos, 1.0);
    FragPos = world.xyz;
    Normal = mat3(transpose(inverse(model))) * aNormal;
    FlatNormal = Normal;
    TexCoords = aTexCoords;
    gl_Position = projection * view * world;
}
`

const phongFrag = `#version 410 core
@LIGHTS@
struct Material {
    vec3 diffuse;
};
uniform Material material;
uniform vec3 ambientLight;
uniform bool texture_flag;
uniform bool flat_flag;
uniform sampler2D texture_diffuse1;
uniform sampler2D texture_specular1;
uniform mat4 view_inv;

in vec3 FragPos;
in vec3 Normal;
flat in vec3 FlatNormal;
in vec2 TexCoords;

out vec4 FragColor;

void main() {
    vec3 normal = normalize(flat_flag ? FlatNormal : Normal);
    vec3 base = material.diffuse;
    vec3 specMap = material.diffuse * 0.5;
    if (texture_flag) {
        base = texture(texture_diffuse1, TexCoords).rgb;
        specMap = texture(texture_specular1, TexCoords).rgb;
    }
    vec3 eye = vec3(view_inv * vec4(0.0, 0.0, 0.0, 1.0));
    vec3 viewDir = normalize(eye - FragPos);

    vec3 color = ambientLight * base;
    for (int i = 0; i < numLights && i < MAX_LIGHTS; i++) {
        vec3 toLight = normalize(-allLights[i].position.xyz);
        float att = 1.0;
        if (allLights[i].position.w != 0.0) {
            vec3 d = allLights[i].position.xyz - FragPos;
            float dist = length(d);
            toLight = d / dist;
            att = 1.0 / (1.0 + allLights[i].attenuation * dist * dist);
        }
        float diff = max(dot(normal, toLight), 0.0);
        vec3 halfway = normalize(toLight + viewDir);
        float spec = pow(max(dot(normal, halfway), 0.0), 32.0);
        color += att * allLights[i].intensity * (diff * base + spec * specMap);
    }
    FragColor = vec4(color, 1.0);
}
`

const gouraudVert = `#version 410 core
@LIGHTS@
layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec2 aTexCoords;

uniform mat4 model;
uniform mat4 view;
uniform mat4 view_inv;
uniform mat4 projection;

out vec3 Diffuse;
out vec3 Specular;
flat out vec3 FlatDiffuse;
flat out vec3 FlatSpecular;
out vec2 TexCoords;

void main() {
    vec4 world = model * vec4(aPos, 1.0);
    vec3 pos = world.xyz;
    vec3 normal = normalize(mat3(transpose(inverse(model))) * aNormal);
    vec3 eye = vec3(view_inv * vec4(0.0, 0.0, 0.0, 1.0));
    vec3 viewDir = normalize(eye - pos);

    vec3 diffuse = vec3(0.0);
    vec3 specular = vec3(0.0);
    for (int i = 0; i < numLights && i < MAX_LIGHTS; i++) {
        vec3 toLight = normalize(-allLights[i].position.xyz);
        float att = 1.0;
        if (allLights[i].position.w != 0.0) {
            vec3 d = allLights[i].position.xyz - pos;
            float dist = length(d);
            toLight = d / dist;
            att = 1.0 / (1.0 + allLights[i].attenuation * dist * dist);
        }
        vec3 halfway = normalize(toLight + viewDir);
        diffuse += att * allLights[i].intensity * max(dot(normal, toLight), 0.0);
        specular += att * allLights[i].intensity * pow(max(dot(normal, halfway), 0.0), 32.0);
    }
    Diffuse = diffuse;
    Specular = specular;
    FlatDiffuse = diffuse;
    FlatSpecular = specular;
    TexCoords = aTexCoords;
    gl_Position = projection * view * world;
}
`

const gouraudFrag = `#version 410 core
struct Material {
    vec3 diffuse;
};
uniform Material material;
uniform vec3 ambientLight;
uniform bool texture_flag;
uniform bool flat_flag;
uniform sampler2D texture_diffuse1;
uniform sampler2D texture_specular1;

in vec3 Diffuse;
in vec3 Specular;
flat in vec3 FlatDiffuse;
flat in vec3 FlatSpecular;
in vec2 TexCoords;

out vec4 FragColor;

void main() {
    vec3 diffuse = flat_flag ? FlatDiffuse : Diffuse;
    vec3 specular = flat_flag ? FlatSpecular : Specular;
    vec3 base = material.diffuse;
    vec3 specMap = material.diffuse * 0.5;
    if (texture_flag) {
        base = texture(texture_diffuse1, TexCoords).rgb;
        specMap = texture(texture_specular1, TexCoords).rgb;
    }
    FragColor = vec4((ambientLight + diffuse) * base + specular * specMap, 1.0);
}
`

const lampVert = `#version 410 core
layout (location = 0) in vec3 aPos;

uniform mat4 model;
uniform mat4 view;
uniform mat4 projection;

void main() {
    gl_Position = projection * view * model * vec4(aPos, 1.0);
}
`

const lampFrag = `#version 410 core
uniform vec3 lampColor;

out vec4 FragColor;

void main() {
    FragColor = vec4(lampColor, 1.0);
}
`

func withLights(src string) string {
	return strings.Replace(src, "@LIGHTS@\n", fmt.Sprintf(lightBlock, scene.MaxLights), 1)
}

// BuiltinSources returns the compiled-in programs keyed by name.
func BuiltinSources() map[string]ProgramSource {
	return map[string]ProgramSource{
		PhongProgram:   {PhongProgram, phongVert, withLights(phongFrag)},
		GouraudProgram: {GouraudProgram, withLights(gouraudVert), gouraudFrag},
		LampProgram:    {LampProgram, lampVert, lampFrag},
	}
}

// ShaderFiles returns the vertex and fragment paths of program name in dir.
func ShaderFiles(dir, name string) (vert, frag string) {
	return filepath.Join(dir, name+".vert"), filepath.Join(dir, name+".frag")
}

// WriteBuiltinSources writes every built-in program into dir as
// <name>.vert and <name>.frag, a starting point for a custom shader
// directory.
func WriteBuiltinSources(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for name, src := range BuiltinSources() {
		vert, frag := ShaderFiles(dir, name)
		if err := os.WriteFile(vert, []byte(src.Vertex), 0o644); err != nil {
			return err
		}
		if err := os.WriteFile(frag, []byte(src.Fragment), 0o644); err != nil {
			return err
		}
	}
	return nil
}
