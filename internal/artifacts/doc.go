// Package artifacts manages the APK and icon files of an extension repository:
// it names the files that belong to a module, prunes them for deleted modules,
// and copies freshly built artifact trees over the published ones.
package artifacts
