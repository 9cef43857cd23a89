// Package formats reads and writes height maps, images and meshes.
//
// PHM is the native binary height map container (see phm.go). Height fields
// export to grayscale PNG, TIFF, BMP, WebP and TGA, and meshes to Wavefront OBJ.
package formats
