// pkg/renderer/shaders.go
// Copyright(c) 2026 simviz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

// Shader sources for the four programs. All of them take a single
// projectionMatrix uniform; the depth bias that keeps triangles under
// lines under points is baked into the matrix by the camera.

const pointsVertexShader = `
#version 330

uniform mat4 projectionMatrix;

layout(location = 0) in vec2 v_position;
layout(location = 1) in vec4 v_color;
layout(location = 2) in float v_size;

out vec4 f_color;

void main() {
    f_color = v_color;
    gl_Position = projectionMatrix * vec4(v_position, 0.0f, 1.0f);
    gl_PointSize = v_size;
}
`

const linesVertexShader = `
#version 330

uniform mat4 projectionMatrix;

layout(location = 0) in vec2 v_position;
layout(location = 1) in vec4 v_color;

out vec4 f_color;

void main() {
    f_color = v_color;
    gl_Position = projectionMatrix * vec4(v_position, 0.0f, 1.0f);
}
`

// flatFragmentShader is shared by the points, lines, and plain triangle
// programs.
const flatFragmentShader = `
#version 330

in vec4 f_color;

out vec4 color;

void main() {
    color = f_color;
}
`

const texturedVertexShader = `
#version 330

uniform mat4 projectionMatrix;

layout(location = 0) in vec2 v_position;
layout(location = 1) in vec4 v_color;
layout(location = 2) in vec2 v_texCoord;
layout(location = 3) in int v_matIndex;

out vec4 f_color;
out vec2 f_texCoord;
flat out int f_matIndex;

void main() {
    f_color = v_color;
    f_texCoord = v_texCoord;
    f_matIndex = v_matIndex;
    gl_Position = projectionMatrix * vec4(v_position, 0.0f, 1.0f);
}
`

const texturedFragmentShader = `
#version 330

uniform sampler2D materialTexture0;
uniform sampler2D materialTexture1;

in vec4 f_color;
in vec2 f_texCoord;
flat in int f_matIndex;

out vec4 color;

void main() {
    vec4 texColor;
    if (f_matIndex == 0) {
        texColor = texture(materialTexture0, f_texCoord);
    } else {
        texColor = texture(materialTexture1, f_texCoord);
    }
    color = vec4(texColor.rgb * f_color.rgb, f_color.a);
}
`
