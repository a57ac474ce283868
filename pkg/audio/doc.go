// Package audio provides audio processing utilities.
//
// This package serves as an umbrella for audio-related sub-packages:
//
//   - pcm: PCM16 sample conversion and WAV container reading
//   - resampler: conversion of arbitrary-rate input to 16 kHz mono
//   - dsp: the spectral front-end (FFT, mel filterbank, MFCC)
package audio
